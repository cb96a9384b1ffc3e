package domain

// TokenID identifies a unique asset within one contract instance.
type TokenID uint64

// TokenMetadata is the descriptive payload attached at mint time.
type TokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// Role names one of the two escrow parties.
type Role string

const (
	RoleSeller Role = "seller"
	RoleClient Role = "client"
)

func (r Role) Valid() bool { return r == RoleSeller || r == RoleClient }
