package domain

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/holiman/uint256"
)

// Journal entries survive a store round trip byte-for-byte, so the
// event JSON must decode back to a deeply equal value.
func TestEventJSONRoundTrip(t *testing.T) {
	from, to, payee := Address{1}, Address{2}, Address{3}
	events := []Event{
		NewTransferEvent(7, from, to, uint256.NewInt(101), []PayoutLeg{
			{Payee: payee, Amount: uint256.NewInt(101)},
		}),
		NewApprovalEvent(7, from, to),
		NewConfirmationEvent(RoleSeller, from, true, false, false),
		NewFungibleTransferEvent(from, to, uint256.NewInt(5)),
		NewFungibleApprovalEvent(from, to, uint256.NewInt(9)),
		NewEvictedEvent("deadbeef"),
	}
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			t.Fatalf("%s: marshal: %v", event.Type, err)
		}
		var back Event
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("%s: unmarshal: %v", event.Type, err)
		}
		if !reflect.DeepEqual(event, back) {
			t.Fatalf("%s: round trip changed the event:\nbefore: %+v\nafter:  %+v", event.Type, event, back)
		}
	}
}

func TestConfirmationEventCarriesVote(t *testing.T) {
	wallet := Address{4}
	event := NewConfirmationEvent(RoleClient, wallet, false, false, true)
	if event.Value == nil || *event.Value {
		t.Fatalf("vote lost: %+v", event)
	}
	if !event.Rejected || event.Closed {
		t.Fatalf("flags wrong: %+v", event)
	}
	if *event.Wallet != wallet || event.Role != RoleClient {
		t.Fatalf("identity wrong: %+v", event)
	}
}
