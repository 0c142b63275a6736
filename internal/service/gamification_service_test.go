package service

import (
	"strings"
	"testing"
)

func TestGenerateCertificateCode(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateCertificateCode()
		if !strings.HasPrefix(code, "LMS-") {
			t.Fatalf("code %q missing LMS- prefix", code)
		}
		body := strings.TrimPrefix(code, "LMS-")
		if len(body) != 8 {
			t.Fatalf("code body %q length = %d, want 8", body, len(body))
		}
		for _, ch := range body {
			if !strings.ContainsRune(alphabet, ch) {
				t.Fatalf("code %q contains %q outside the unambiguous alphabet", code, ch)
			}
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Fatalf("only %d distinct codes out of 100, generator looks broken", len(seen))
	}
}
