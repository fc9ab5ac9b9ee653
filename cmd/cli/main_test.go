package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, s := range []string{"0", "-3", "abc"} {
		_, err := parseID(s)
		assert.Error(t, err, s)
	}
}

func TestTokenIssue(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "issue", "--user-id", "9", "--role", "admin", "--ttl", "1h")
	require.NoError(t, err)

	p, err := auth.NewJWTManager("cli-secret", time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.UserID)
	assert.Equal(t, domain.RoleAdmin, p.Role)
}

func TestTokenIssueRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	_, err := execute(t, "token", "issue", "--user-id", "9", "--role", "root")
	assert.ErrorContains(t, err, "invalid --role")

	_, err = execute(t, "token", "issue", "--role", "user")
	assert.ErrorContains(t, err, "invalid --user-id")

	t.Setenv("JWT_SECRET", "")
	_, err = execute(t, "token", "issue", "--user-id", "9")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestReviewCommandsRequireID(t *testing.T) {
	_, err := execute(t, "withdrawals", "approve")
	assert.Error(t, err)

	_, err = execute(t, "withdrawals", "reject", "not-a-number")
	assert.ErrorContains(t, err, "invalid id")
}
