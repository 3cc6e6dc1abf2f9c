package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"downtime-tracker/domain"
)

func TestGenerateToken_Round_Trips_Its_Claims(t *testing.T) {
	req := require.New(t)

	// Given a signed token for an operator session
	token, err := GenerateToken(7, domain.RoleOperator, "session-1", time.Hour)
	req.NoError(err)

	// When the token is validated
	claims, err := ValidateToken(token)

	// Then the identity comes back intact
	req.NoError(err)
	req.Equal(7, claims.UserID)
	req.Equal(string(domain.RoleOperator), claims.Role)
	req.Equal("session-1", claims.SessionID)
}

func TestValidateToken_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("not.a.token")

	req.Error(err)
}

func TestValidateToken_Rejects_Tampered_Signature(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(7, domain.RoleOperator, "session-1", time.Hour)
	req.NoError(err)

	// Flip the last character of the signature
	tampered := token[:len(token)-1]
	if token[len(token)-1] == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}

	_, err = ValidateToken(tampered)
	req.Error(err)
}

func TestValidateToken_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(7, domain.RoleOperator, "session-1", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func TestHashPassword_Verifies_The_Original_Only(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Str0ng!Pass42")
	req.NoError(err)

	ok, err := ComparePassword("Str0ng!Pass42", hash)
	req.NoError(err)
	req.True(ok)

	ok, err = ComparePassword("Wr0ng!Pass", hash)
	req.NoError(err)
	req.False(ok)
}

func TestHashPassword_Salts_Every_Hash(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("Str0ng!Pass42")
	req.NoError(err)
	second, err := HashPassword("Str0ng!Pass42")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestComparePassword_Rejects_Malformed_Hash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("Str0ng!Pass42", "$argon2id$broken")

	req.Error(err)
}

func TestValidateRegister_Enforces_Password_Complexity(t *testing.T) {
	req := require.New(t)

	valid := RegisterRequest{
		Email:    "operator@floor.example.com",
		Name:     "Operator Seven",
		Role:     "operator",
		Password: "Str0ng!Pass42",
	}
	req.NoError(ValidateRegister(valid))

	weak := valid
	weak.Password = "alllowercase"
	req.Error(ValidateRegister(weak))
}

func TestValidateLogin_Requires_A_Well_Formed_Email(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateLogin(LoginRequest{Email: "operator@floor.example.com", Password: "Str0ng!Pass42"}))
	req.Error(ValidateLogin(LoginRequest{Email: "not-an-email", Password: "Str0ng!Pass42"}))
	req.Error(ValidateLogin(LoginRequest{Email: "operator@floor.example.com"}))
}
