package upload

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeDataURI(t *testing.T, uri string) []byte {
	t.Helper()
	i := strings.Index(uri, ",")
	require.Positive(t, i)
	raw, err := base64.StdEncoding.DecodeString(uri[i+1:])
	require.NoError(t, err)
	return raw
}
