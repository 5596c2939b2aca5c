package share

import "testing"

// EncodeRawForTest compresses a hand-written payload record
func EncodeRawForTest(t *testing.T, raw string) string {
	t.Helper()
	s, err := compress([]byte(raw))
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	return s
}
