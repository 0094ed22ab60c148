package uitest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportGenerate(t *testing.T) {
	r := NewReport("ptzctrl", t.TempDir())
	r.AddResult("grid renders", true)
	r.AddResult("dialog <opens>", false)
	r.AddSnapshot("start", "PTZ 1   PTZ 2")

	assert.Equal(t, 1, r.Passed())
	assert.Equal(t, 1, r.Failed())

	name, err := r.Generate()
	require.NoError(t, err)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "grid renders")
	assert.Contains(t, html, "dialog &lt;opens&gt;")
	assert.Contains(t, html, "PTZ 1   PTZ 2")
	assert.Contains(t, html, "1 passed, 1 failed")
}

func TestFreeAddrAndWaitForPort(t *testing.T) {
	addr, err := FreeAddr()
	require.NoError(t, err)
	assert.Error(t, WaitForPort(addr, 0))
}
