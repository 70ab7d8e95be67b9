package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storerate/storerate/util/common"
)

type registerForm struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=user owner admin"`
}

type passwordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,strongpassword,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type ratingForm struct {
	StoreId int `json:"storeId" validate:"required,gte=1"`
	Score   int `json:"score" validate:"required,min=1,max=5"`
}

type responseForm struct {
	Response string `json:"response" validate:"notblank,max=1000"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "not an AppError: %v", err)
	require.Equal(t, common.KindValidation, appErr.Kind)
	out := make(map[string]string, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func validRegister() registerForm {
	return registerForm{
		Name:     strings.Repeat("a", 20),
		Email:    "someone@example.com",
		Password: "password",
		Role:     "user",
	}
}

func TestRegisterNameBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		len   int
		valid bool
	}{
		{"19 chars", 19, false},
		{"20 chars", 20, true},
		{"60 chars", 60, true},
		{"61 chars", 61, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegister()
			f.Name = strings.Repeat("n", tt.len)
			err := Struct(f)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fieldsOf(t, err), "name")
		})
	}
}

func TestReportsEveryFailedField(t *testing.T) {
	err := Struct(registerForm{Name: "short", Email: "nope", Password: "x", Role: "root"})
	fields := fieldsOf(t, err)
	assert.Len(t, fields, 4)
	assert.Equal(t, "must be at least 20 characters", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be one of: user, owner, admin", fields["role"])
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		pw      string
		missing []string
	}{
		{"Abcdef1!", nil},
		{"abcdef1!", []string{"an uppercase letter"}},
		{"ABCDEF1!", []string{"a lowercase letter"}},
		{"Abcdefg!", []string{"a digit"}},
		{"Abcdefg1", []string{"a symbol"}},
		{"abcdefgh", []string{"an uppercase letter", "a digit", "a symbol"}},
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			assert.Equal(t, tt.missing, MissingPasswordClasses(tt.pw))
		})
	}
}

func TestPasswordChangeRules(t *testing.T) {
	ok := passwordForm{CurrentPassword: "Old-pass1", NewPassword: "New-pass1", ConfirmPassword: "New-pass1"}
	assert.NoError(t, Struct(ok))

	same := ok
	same.NewPassword, same.ConfirmPassword = ok.CurrentPassword, ok.CurrentPassword
	assert.Equal(t, "must differ from the current password", fieldsOf(t, Struct(same))["newPassword"])

	mismatch := ok
	mismatch.ConfirmPassword = "New-pass2"
	assert.Equal(t, "must match the new password", fieldsOf(t, Struct(mismatch))["confirmPassword"])

	weak := ok
	weak.NewPassword, weak.ConfirmPassword = "newpass12", "newpass12"
	assert.Equal(t, "must contain an uppercase letter, a symbol", fieldsOf(t, Struct(weak))["newPassword"])
}

func TestScoreRange(t *testing.T) {
	for score := 0; score <= 6; score++ {
		err := Struct(ratingForm{StoreId: 1, Score: score})
		if score >= 1 && score <= 5 {
			assert.NoError(t, err, "score %d", score)
		} else {
			assert.Contains(t, fieldsOf(t, err), "score", "score %d", score)
		}
	}
	assert.Contains(t, fieldsOf(t, Struct(ratingForm{Score: 3})), "storeId")
}

func TestResponseNotBlank(t *testing.T) {
	assert.Contains(t, fieldsOf(t, Struct(responseForm{Response: "   "})), "response")
	assert.Contains(t, fieldsOf(t, Struct(responseForm{Response: strings.Repeat("x", 1001)})), "response")
	assert.NoError(t, Struct(responseForm{Response: "thanks"}))
}

func TestMerge(t *testing.T) {
	assert.NoError(t, Merge(nil, nil))

	err := Merge(Field("a", "bad"), nil, Field("b", "worse"))
	fields := fieldsOf(t, err)
	assert.Equal(t, map[string]string{"a": "bad", "b": "worse"}, fields)

	other := errors.New("boom")
	assert.Equal(t, other, Merge(Field("a", "bad"), other))
}
