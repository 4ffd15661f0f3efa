package purrview

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecodeRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want []Cell
	}{
		{
			name: "empty row",
			data: "",
			want: nil,
		},
		{
			name: "single bold red on black",
			data: "A\t255,0,0\t0,0,0\tb",
			want: []Cell{{
				Glyph:      "A",
				Foreground: RGB{255, 0, 0},
				Background: RGB{0, 0, 0},
				Flags:      FlagBold,
			}},
		},
		{
			name: "two cells",
			data: "A\t255,0,0\t0,0,0\tb\nB\t0,255,0\t0,0,0\t",
			want: []Cell{
				{Glyph: "A", Foreground: RGB{255, 0, 0}, Background: RGB{0, 0, 0}, Flags: FlagBold},
				{Glyph: "B", Foreground: RGB{0, 255, 0}, Background: RGB{0, 0, 0}},
			},
		},
		{
			name: "all flags",
			data: "x\t1,2,3\t4,5,6\tbidw",
			want: []Cell{{
				Glyph:      "x",
				Foreground: RGB{1, 2, 3},
				Background: RGB{4, 5, 6},
				Flags:      FlagBold | FlagItalic | FlagDim | FlagWide,
			}},
		},
		{
			name: "unknown flag characters ignored",
			data: "x\t1,2,3\t4,5,6\tzb?",
			want: []Cell{{
				Glyph:      "x",
				Foreground: RGB{1, 2, 3},
				Background: RGB{4, 5, 6},
				Flags:      FlagBold,
			}},
		},
		{
			name: "short record becomes blank cell",
			data: "garbage",
			want: []Cell{BlankCell()},
		},
		{
			name: "three fields still short",
			data: "A\t255,0,0\t0,0,0",
			want: []Cell{BlankCell()},
		},
		{
			name: "short record between valid cells keeps column count",
			data: "A\t9,9,9\t0,0,0\t\nbroken\nB\t8,8,8\t0,0,0\t",
			want: []Cell{
				{Glyph: "A", Foreground: RGB{9, 9, 9}, Background: RGB{0, 0, 0}},
				BlankCell(),
				{Glyph: "B", Foreground: RGB{8, 8, 8}, Background: RGB{0, 0, 0}},
			},
		},
		{
			name: "unparseable components use channel defaults",
			data: "A\tfoo,0,300\t9,,12\t",
			want: []Cell{{
				Glyph:      "A",
				Foreground: RGB{255, 0, 255},
				Background: RGB{9, 0, 12},
			}},
		},
		{
			name: "missing components use channel defaults",
			data: "A\t\t\t",
			want: []Cell{{
				Glyph:      "A",
				Foreground: WireDefaultForeground,
				Background: WireDefaultBackground,
			}},
		},
		{
			name: "negative component rejected",
			data: "A\t-1,10,10\t0,0,0\t",
			want: []Cell{{
				Glyph:      "A",
				Foreground: RGB{255, 10, 10},
				Background: RGB{0, 0, 0},
			}},
		},
		{
			name: "empty glyph cell keeps its background",
			data: "\t255,255,255\t10,20,30\t",
			want: []Cell{{
				Glyph:      "",
				Foreground: RGB{255, 255, 255},
				Background: RGB{10, 20, 30},
			}},
		},
		{
			name: "pipe is an ordinary glyph",
			data: "|\t1,1,1\t0,0,0\t",
			want: []Cell{{
				Glyph:      "|",
				Foreground: RGB{1, 1, 1},
				Background: RGB{0, 0, 0},
			}},
		},
		{
			name: "trailing newline is a terminator not a blank cell",
			data: "A\t255,0,0\t0,0,0\tb\nB\t0,255,0\t0,0,0\t\n",
			want: []Cell{
				{Glyph: "A", Foreground: RGB{255, 0, 0}, Background: RGB{0, 0, 0}, Flags: FlagBold},
				{Glyph: "B", Foreground: RGB{0, 255, 0}, Background: RGB{0, 0, 0}},
			},
		},
		{
			name: "lone newline decodes to no cells",
			data: "\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DecodeRow(tt.data)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeRow(%q) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

func TestDecodeRowWideCellWidth(t *testing.T) {
	t.Parallel()

	cells := DecodeRow("世\t255,255,255\t0,0,0\tw\nA\t255,255,255\t0,0,0\t")
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if got := cells[0].Width(); got != 2 {
		t.Errorf("wide cell Width() = %d, want 2", got)
	}
	if got := cells[1].Width(); got != 1 {
		t.Errorf("normal cell Width() = %d, want 1", got)
	}
}

func TestEncodeRowRoundTrip(t *testing.T) {
	t.Parallel()

	rows := [][]Cell{
		{
			{Glyph: "A", Foreground: RGB{255, 0, 0}, Background: RGB{0, 0, 0}, Flags: FlagBold},
			{Glyph: "b", Foreground: RGB{1, 2, 3}, Background: RGB{4, 5, 6}, Flags: FlagItalic | FlagDim},
			{Glyph: "世", Foreground: RGB{200, 200, 200}, Background: RGB{30, 30, 30}, Flags: FlagWide},
		},
		{
			{Glyph: "", Foreground: WireDefaultForeground, Background: RGB{10, 20, 30}},
		},
	}

	for _, cells := range rows {
		encoded := EncodeRow(cells)
		decoded := DecodeRow(encoded)
		if !reflect.DeepEqual(decoded, cells) {
			t.Errorf("round trip mismatch:\nencoded %q\ngot  %+v\nwant %+v", encoded, decoded, cells)
		}
	}
}

func TestEncodeRowFlagOrder(t *testing.T) {
	t.Parallel()

	cells := []Cell{{Glyph: "x", Flags: FlagWide | FlagDim | FlagItalic | FlagBold}}
	encoded := EncodeRow(cells)
	if !strings.HasSuffix(encoded, "\tbidw") {
		t.Errorf("EncodeRow flags = %q, want suffix %q", encoded, "\tbidw")
	}
}

func TestDecodeLine(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		if got := DecodeLine(""); got != nil {
			t.Errorf("DecodeLine(\"\") = %+v, want nil", got)
		}
	})

	t.Run("ascii uses wire defaults", func(t *testing.T) {
		cells := DecodeLine("hi")
		if len(cells) != 2 {
			t.Fatalf("expected 2 cells, got %d", len(cells))
		}
		want := Cell{Glyph: "h", Foreground: WireDefaultForeground, Background: WireDefaultBackground}
		if cells[0] != want {
			t.Errorf("cells[0] = %+v, want %+v", cells[0], want)
		}
	})

	t.Run("cjk cluster is wide", func(t *testing.T) {
		cells := DecodeLine("世x")
		if len(cells) != 2 {
			t.Fatalf("expected 2 cells, got %d", len(cells))
		}
		if !cells[0].Flags.Wide() {
			t.Errorf("CJK cell not flagged wide: %+v", cells[0])
		}
		if cells[1].Flags.Wide() {
			t.Errorf("ascii cell flagged wide: %+v", cells[1])
		}
	})

	t.Run("combining mark stays with its base", func(t *testing.T) {
		cells := DecodeLine("éf")
		if len(cells) != 2 {
			t.Fatalf("expected 2 cells, got %d", len(cells))
		}
		if cells[0].Glyph != "é" {
			t.Errorf("cells[0].Glyph = %q, want %q", cells[0].Glyph, "é")
		}
	})
}
