package whatsapp

import (
	"encoding/base64"
	"testing"
)

func TestDecodeDataURL(t *testing.T) {
	payload := []byte("jpeg bytes here")
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	mimetype, data, err := decodeDataURL(dataURL)
	if err != nil {
		t.Fatalf("decodeDataURL: %v", err)
	}
	if mimetype != "image/jpeg" {
		t.Errorf("mimetype = %q; want image/jpeg", mimetype)
	}
	if string(data) != string(payload) {
		t.Errorf("data mismatch: %q", data)
	}
}

func TestDecodeDataURLRejectsBadPayloads(t *testing.T) {
	cases := []string{
		"",
		"blob:https://web.whatsapp.com/abc",
		"data:image/jpeg,not-base64-section",
		"data:image/jpeg;base64,@@@not-base64@@@",
	}

	for _, in := range cases {
		if _, _, err := decodeDataURL(in); err == nil {
			t.Errorf("decodeDataURL(%q) should fail", in)
		}
	}
}

func TestInsertTextScriptEscapes(t *testing.T) {
	script := insertTextScript(`caption with "quotes" and
newline`)

	// The script must be a single well-formed statement; Go's %q takes
	// care of quoting and newline escapes.
	if script == "" || script[len(script)-1] != ')' {
		t.Errorf("unexpected script shape: %q", script)
	}
	for _, c := range script {
		if c == '\n' {
			t.Error("raw newline survived into the script")
		}
	}
}
