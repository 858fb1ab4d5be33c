package plugin

import "testing"

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Name: "whois", Reason: "routes must return a route group"}
	want := `cannot register plugin "whois": routes must return a route group`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	anon := &ValidationError{Reason: "factory returned nil"}
	want = "cannot register plugin: factory returned nil"
	if anon.Error() != want {
		t.Errorf("got %q, want %q", anon.Error(), want)
	}
}
