package utils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUPIURI(t *testing.T) {
	uri := BuildUPIURI("pustakalu@upi", "Telugu Pustakalu", "TB17000000001234", 250.00)

	require.True(t, strings.HasPrefix(uri, "upi://pay?"))
	parsed, err := url.Parse(uri)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "pustakalu@upi", q.Get("pa"))
	assert.Equal(t, "Telugu Pustakalu", q.Get("pn"))
	assert.Equal(t, "250.00", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "Order TB17000000001234", q.Get("tn"))
}

func TestGenerateUPIQR(t *testing.T) {
	dataURI, err := GenerateUPIQR("TB17000000001234", 165.00)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURI, "data:image/png;base64,"))
	assert.Greater(t, len(dataURI), 100)
}
