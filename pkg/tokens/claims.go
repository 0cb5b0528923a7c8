package tokens

import "github.com/golang-jwt/jwt/v5"

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the payload of both token kinds. Type is informational and is not
// checked on decode.
type Claims struct {
	Type string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}
