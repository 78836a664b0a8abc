package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const origSnapshot = `dn: cn=devs,dc=example,dc=com
objectClass: posixGroup
cn: devs
memberUid: alice
entryUUID: 11111111-1111-1111-1111-111111111111

dn: uid=u2,dc=example,dc=com
objectClass: person
uid: u2
cn: Two
entryUUID: 22222222-2222-2222-2222-222222222222
`

const targetSnapshot = `dn: cn=devs,dc=example,dc=com
objectClass: posixGroup
cn: devs
memberUid: alice
memberUid: bob
entryUUID: 11111111-1111-1111-1111-111111111111

dn: uid=u3,dc=example,dc=com
objectClass: person
uid: u3
cn: Three
entryUUID: 33333333-3333-3333-3333-333333333333
`

func TestExecuteUsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing target", []string{"--orig", "a.ldif"}},
		{"missing orig", []string{"--target", "b.ldif"}},
		{"unknown flag", []string{"--orig", "a", "--target", "b", "--bogus"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, ExitUsage, Execute(tc.args))
		})
	}
}

func TestExecuteHelpExitsNonZero(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"-h"}, {"help"}} {
		assert.Equal(t, ExitUsage, Execute(args))
	}
}

func TestExecuteMissingInputIsFatal(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.ldif", origSnapshot)

	code := Execute([]string{"--orig", orig, "--target", filepath.Join(dir, "absent.ldif")})
	assert.Equal(t, ExitFatal, code)
}

func TestExecuteEndToEnd(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.ldif", origSnapshot)
	target := writeFile(t, dir, "target.ldif", targetSnapshot)
	out := filepath.Join(dir, "changes.ldif")

	code := Execute([]string{"--orig", orig, "--target", target, "--out", out})
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"dn: cn=devs,dc=example,dc=com",
		"changetype: modify",
		"add: memberuid",
		"memberuid: bob",
		"-",
		"",
		"dn: uid=u3,dc=example,dc=com",
		"changetype: add",
		"cn: Three",
		"objectclass: person",
		"uid: u3",
		"",
		"dn: uid=u2,dc=example,dc=com",
		"changetype: delete",
		"",
	}, "\n"), string(data))
}

func TestExecuteSpill(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.ldif", origSnapshot)
	target := writeFile(t, dir, "target.ldif", targetSnapshot)
	out := filepath.Join(dir, "changes.ldif")
	plainOut := filepath.Join(dir, "plain.ldif")

	require.Equal(t, ExitSuccess, Execute([]string{"--orig", orig, "--target", target, "--out", plainOut}))
	require.Equal(t, ExitSuccess, Execute([]string{"--orig", orig, "--target", target, "--out", out, "--spill"}))

	// The spill store must not change the output.
	plain, err := os.ReadFile(plainOut)
	require.NoError(t, err)
	spilled, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(plain), string(spilled))
}

func TestExecuteZeroChanges(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.ldif", origSnapshot)
	out := filepath.Join(dir, "changes.ldif")

	code := Execute([]string{"--orig", orig, "--target", orig, "--out", out})
	require.Equal(t, ExitSuccess, code, "zero changes is still success")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, string(data))
}

func TestExecuteReverse(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.ldif", origSnapshot)
	target := writeFile(t, dir, "target.ldif", targetSnapshot)
	out := filepath.Join(dir, "rollback.ldif")

	code := Execute([]string{"--orig", orig, "--target", target, "--reverse", "--out", out})
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	// Reversed: u3 existed only in target, so rolling back deletes it and
	// re-adds u2.
	assert.Contains(t, string(data), "dn: uid=u2,dc=example,dc=com\nchangetype: add\n")
	assert.Contains(t, string(data), "dn: uid=u3,dc=example,dc=com\nchangetype: delete\n")
	assert.Contains(t, string(data), "delete: memberuid\nmemberuid: bob\n")
}

func TestExecuteSystemToggle(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.ldif", `dn: uid=a,dc=example,dc=com
uid: a
entryUUID: 11111111-1111-1111-1111-111111111111
entryCSN: 20260829120000.000000Z#000000#000#000000
`)
	target := writeFile(t, dir, "target.ldif", `dn: uid=a,dc=example,dc=com
uid: a
entryUUID: 11111111-1111-1111-1111-111111111111
entryCSN: 20260830093000.000000Z#000000#000#000000
`)
	out := filepath.Join(dir, "changes.ldif")

	require.Equal(t, ExitSuccess, Execute([]string{"--orig", orig, "--target", target, "--out", out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, string(data), "system attribute churn must not produce records")

	require.Equal(t, ExitSuccess, Execute([]string{"--orig", orig, "--target", target, "--out", out, "--system"}))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "replace: entrycsn")
}

func TestExecuteAttrsFileOverride(t *testing.T) {
	dir := t.TempDir()
	orig := writeFile(t, dir, "orig.ldif", `dn: uid=a,dc=example,dc=com
uid: a
entryUUID: 11111111-1111-1111-1111-111111111111
entryCSN: 20260829120000.000000Z#000000#000#000000
`)
	target := writeFile(t, dir, "target.ldif", `dn: uid=a,dc=example,dc=com
uid: a
entryUUID: 11111111-1111-1111-1111-111111111111
entryCSN: 20260830093000.000000Z#000000#000#000000
`)
	attrs := writeFile(t, dir, "attrs.yaml", "system_attributes: [entryUUID]\n")
	out := filepath.Join(dir, "changes.ldif")

	// With entryCSN no longer in the system set, its churn is diffed.
	code := Execute([]string{"--orig", orig, "--target", target, "--attrs-file", attrs, "--out", out})
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "replace: entrycsn")

	// A broken override is a usage error.
	badAttrs := writeFile(t, dir, "bad.yaml", "system_attributes: []\n")
	assert.Equal(t, ExitUsage, Execute([]string{"--orig", orig, "--target", target, "--attrs-file", badAttrs, "--out", out}))
}

func TestExecuteVersion(t *testing.T) {
	assert.Equal(t, ExitSuccess, Execute([]string{"version"}))
}
