package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{"", ErrProtoBadRequest, ErrProtoVersion, ErrBadRequest, ErrInternal} {
		if !IsKnownCode(code) {
			t.Errorf("code %q should be known", code)
		}
	}
	if IsKnownCode("E_NOPE") {
		t.Errorf("unknown code accepted")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"POS","protocol_version":"1.0","x":1,"z":2}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != TypePos || m.ProtocolVersion != Version {
		t.Fatalf("got %+v", m)
	}
	if _, err := DecodeBase([]byte(`{`)); err == nil {
		t.Fatalf("malformed json accepted")
	}
}
