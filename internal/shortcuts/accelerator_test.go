package shortcuts

import "testing"

func TestParseAccelerator(t *testing.T) {
	tests := []struct {
		in   string
		want Accelerator
	}{
		{"Ctrl+Shift+Space", Accelerator{Ctrl: true, Shift: true, Key: "space"}},
		{"Ctrl+Shift+D", Accelerator{Ctrl: true, Shift: true, Key: "d"}},
		{"ctrl+shift+d", Accelerator{Ctrl: true, Shift: true, Key: "d"}},
		{"Alt+F4", Accelerator{Alt: true, Key: "f4"}},
		{"Cmd+P", Accelerator{Meta: true, Key: "p"}},
		{"Control+Option+Escape", Accelerator{Ctrl: true, Alt: true, Key: "escape"}},
		{"F12", Accelerator{Key: "f12"}},
		{" Ctrl + Shift + Space ", Accelerator{Ctrl: true, Shift: true, Key: "space"}},
	}

	for _, tt := range tests {
		got, err := ParseAccelerator(tt.in)
		if err != nil {
			t.Errorf("ParseAccelerator(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAccelerator(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseAcceleratorRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"Ctrl+Shift",   // no key
		"Ctrl++Space",  // empty token
		"Space+Ctrl",   // key before the end
		"Ctrl+Ctrl+X",  // repeated modifier
		"Ctrl+Shift+",  // trailing separator
	}

	for _, in := range bad {
		if _, err := ParseAccelerator(in); err == nil {
			t.Errorf("ParseAccelerator(%q) succeeded, want error", in)
		}
	}
}

func TestAcceleratorString(t *testing.T) {
	acc := Accelerator{Ctrl: true, Shift: true, Key: "space"}
	if got := acc.String(); got != "Ctrl+Shift+Space" {
		t.Errorf("String() = %q", got)
	}
}
