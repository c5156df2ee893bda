package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase is one request against a router and its expected outcome.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           any
	Headers        map[string]string
	ExpectedStatus int
	ExpectedCode   string
	Validate       func(t *testing.T, rec *httptest.ResponseRecorder)
}

// RunHTTPTestCases runs each case as a subtest against engine.
func RunHTTPTestCases(t *testing.T, engine *gin.Engine, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, engine, tc)
		})
	}
}

// RunHTTPTestCase performs one request and checks status, error code and
// the custom validation hook.
func RunHTTPTestCase(t *testing.T, engine *gin.Engine, tc HTTPTestCase) *httptest.ResponseRecorder {
	t.Helper()

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if tc.Body != nil {
		body = ToJSONReader(t, tc.Body)
	}
	req := httptest.NewRequest(method, tc.Path, body)
	if tc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tc.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, rec.Code, "Unexpected status code: %s", rec.Body.String())
	}
	if tc.ExpectedCode != "" {
		AssertErrorCode(t, rec, tc.ExpectedCode)
	}
	if tc.Validate != nil {
		tc.Validate(t, rec)
	}
	return rec
}

// JSONResponse parses the response body as a JSON object.
func JSONResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var result map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &result)
	require.NoError(t, err, "Failed to parse JSON response")
	return result
}

// JSONData decodes the data member of a success envelope into T.
func JSONData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "Failed to parse JSON response")
	require.True(t, envelope.Success, "Expected a success envelope: %s", rec.Body.String())

	var result T
	require.NoError(t, json.Unmarshal(envelope.Data, &result), "Failed to parse response data")
	return result
}

// AssertErrorCode asserts an error envelope carrying code.
func AssertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()

	resp := JSONResponse(t, rec)
	assert.Equal(t, false, resp["success"], "Expected success to be false")
	errMap, ok := resp["error"].(map[string]any)
	require.True(t, ok, "Expected error object in response")
	assert.Equal(t, code, errMap["code"], "Unexpected error code")
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
