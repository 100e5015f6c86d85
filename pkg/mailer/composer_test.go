package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(Branding{
		AppName:   "BuildTrack",
		PortalURL: "https://portal.test",
	})
	require.NoError(t, err)
	return c
}

func TestStageChange(t *testing.T) {
	c := newTestComposer(t)

	r, err := c.StageChange("June", "Nomad ST", "FL-2026-0042", "Neck Carve", "abc-123")
	require.NoError(t, err)

	assert.Equal(t, "Your Nomad ST has moved to Neck Carve", r.Subject)
	assert.Contains(t, r.TextBody, "Hi June,")
	assert.Contains(t, r.TextBody, "order FL-2026-0042")
	assert.Contains(t, r.TextBody, "https://portal.test/builds/abc-123")
	assert.Contains(t, r.HTMLBody, "Neck Carve")
}

func TestRunUpdateSubjectCarriesRunName(t *testing.T) {
	c := newTestComposer(t)

	r, err := c.RunUpdate("Winter Batch", "Necks are carved", "First paragraph.\n\nSecond paragraph.")
	require.NoError(t, err)

	assert.Equal(t, "Winter Batch: Necks are carved", r.Subject)
	assert.Contains(t, r.HTMLBody, "First paragraph.")
	assert.Contains(t, r.HTMLBody, "Second paragraph.")
}

func TestInviteEscapesLinkParams(t *testing.T) {
	c := newTestComposer(t)

	r, err := c.Invite("Mia", "mia+guitars@example.com", "tok/with=chars")
	require.NoError(t, err)

	assert.Equal(t, "You're invited to BuildTrack", r.Subject)
	assert.Contains(t, r.TextBody, "token=tok%2Fwith%3Dchars")
	assert.Contains(t, r.TextBody, "email=mia%2Bguitars%40example.com")
	assert.Contains(t, r.TextBody, "expires in 7 days")
}

func TestInvoiceIssuedFormatsAmount(t *testing.T) {
	c := newTestComposer(t)

	r, err := c.InvoiceIssued("June", "Nomad ST", "INV-2026-0007", 1500.00, "Build deposit")
	require.NoError(t, err)

	assert.Equal(t, "Invoice INV-2026-0007 for your Nomad ST", r.Subject)
	assert.Contains(t, r.TextBody, "$1500.00")
	assert.Contains(t, r.HTMLBody, "Build deposit")
}

func TestGreetingFallsBackWithoutName(t *testing.T) {
	c := newTestComposer(t)

	r, err := c.CustomShopAck("")
	require.NoError(t, err)
	assert.Contains(t, r.TextBody, "Hello,")

	r, err = c.CustomShopAck("Ren")
	require.NoError(t, err)
	assert.Contains(t, r.TextBody, "Hi Ren,")
}

func TestBodyIsHTMLEscaped(t *testing.T) {
	c := newTestComposer(t)

	r, err := c.RunUpdate("Winter Batch", "Specs", "Bridge: <Hipshot> & Gotoh")
	require.NoError(t, err)
	assert.Contains(t, r.HTMLBody, "&lt;Hipshot&gt; &amp; Gotoh")
	assert.NotContains(t, r.HTMLBody, "<Hipshot>")
}
