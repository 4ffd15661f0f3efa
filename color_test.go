package purrview

import "testing"

// testTheme returns a theme whose slots are visibly distinct from the
// engine defaults so remapping is observable.
func testTheme() Theme {
	th := DefaultTheme()
	th.Background = RGB{20, 20, 25}
	for i := range th.Palette {
		th.Palette[i] = RGB{uint8(i + 1), uint8(i + 1), uint8(i + 1)}
	}
	return th
}

func TestThemeResolve(t *testing.T) {
	t.Parallel()

	th := testTheme()

	tests := []struct {
		name string
		in   RGB
		ch   Channel
		want RGB
	}{
		{"default black fg maps to black slot", RGB{0, 0, 0}, ForegroundChannel, th.Palette[0]},
		{"default black bg maps to theme background", RGB{0, 0, 0}, BackgroundChannel, th.Background},
		{"default red fg maps to red slot", RGB{205, 49, 49}, ForegroundChannel, th.Palette[1]},
		{"default red bg maps to red slot", RGB{205, 49, 49}, BackgroundChannel, th.Palette[1]},
		{"bright cyan maps to its slot", RGB{41, 184, 219}, ForegroundChannel, th.Palette[14]},
		{"white passes through", RGB{229, 229, 229}, ForegroundChannel, RGB{229, 229, 229}},
		{"bright white passes through", RGB{255, 255, 255}, ForegroundChannel, RGB{255, 255, 255}},
		{"white bg passes through", RGB{229, 229, 229}, BackgroundChannel, RGB{229, 229, 229}},
		{"true color passes through", RGB{1, 2, 3}, ForegroundChannel, RGB{1, 2, 3}},
		{"near miss is not remapped", RGB{205, 49, 50}, ForegroundChannel, RGB{205, 49, 50}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := th.Resolve(tt.in, tt.ch); got != tt.want {
				t.Errorf("Resolve(%v, %v) = %v, want %v", tt.in, tt.ch, got, tt.want)
			}
		})
	}
}

func TestDefaultThemePaintsEngineColorsVerbatim(t *testing.T) {
	t.Parallel()

	th := DefaultTheme()
	for _, c := range []RGB{{0, 0, 0}, {205, 49, 49}, {13, 188, 121}, {102, 102, 102}} {
		if got := th.Resolve(c, ForegroundChannel); got != c {
			t.Errorf("default theme Resolve(%v, fg) = %v, want identity", c, got)
		}
	}
}

func TestEnginePaletteSlot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   RGB
		want int
	}{
		{RGB{0, 0, 0}, 0},
		{RGB{205, 49, 49}, 1},
		{RGB{229, 229, 229}, 7},
		{RGB{102, 102, 102}, 8},
		{RGB{255, 255, 255}, 15},
		{RGB{1, 2, 3}, -1},
		{RGB{205, 49, 48}, -1},
	}
	for _, tt := range tests {
		if got := EnginePaletteSlot(tt.in); got != tt.want {
			t.Errorf("EnginePaletteSlot(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want RGB
		ok   bool
	}{
		{"#102030", RGB{0x10, 0x20, 0x30}, true},
		{"#FFCC00", RGB{0xFF, 0xCC, 0x00}, true},
		{"#abc", RGB{0xAA, 0xBB, 0xCC}, true},
		{"102030", RGB{}, false},
		{"#12345", RGB{}, false},
		{"", RGB{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHexColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestHexFormat(t *testing.T) {
	t.Parallel()

	if got := (RGB{0x10, 0xAB, 0x03}).Hex(); got != "#10ab03" {
		t.Errorf("Hex() = %q, want %q", got, "#10ab03")
	}
	c := RGB{7, 130, 200}
	parsed, ok := ParseHexColor(c.Hex())
	if !ok || parsed != c {
		t.Errorf("ParseHexColor(Hex()) = %v, %v, want %v, true", parsed, ok, c)
	}
}
