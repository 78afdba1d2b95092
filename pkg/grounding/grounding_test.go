package grounding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToPixelBox(t *testing.T) {
	tests := []struct {
		name   string
		box    Box
		space  Space
		width  int
		height int
		want   PixelBox
	}{
		{
			name:  "normalized",
			box:   Box{10, 20, 30, 40},
			space: SpaceNormalized,
			width: 500, height: 500,
			want: PixelBox{5, 10, 15, 20},
		},
		{
			name:  "normalized bounds",
			box:   Box{0, 0, 999, 999},
			space: SpaceNormalized,
			width: 1240, height: 1754,
			want: PixelBox{0, 0, 1240, 1754},
		},
		{
			name:  "pixel passthrough",
			box:   Box{12, 34, 560, 780.9},
			space: SpacePixel,
			width: 100, height: 100,
			want: PixelBox{12, 34, 560, 780},
		},
		{
			name:  "out of range is not clamped",
			box:   Box{0, 0, 1998, 1998},
			space: SpaceNormalized,
			width: 100, height: 50,
			want: PixelBox{0, 0, 200, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ToPixelBox(tt.box, tt.space, tt.width, tt.height))
		})
	}
}

func TestToPixelBoxStaysWithinDimension(t *testing.T) {
	for _, dim := range []int{1, 7, 500, 999, 1000, 4096} {
		for c := 0; c <= 999; c++ {
			v := float64(c)
			b := ToPixelBox(Box{v, v, v, v}, SpaceNormalized, dim, dim)

			for _, p := range b {
				require.GreaterOrEqual(t, p, 0)
				require.LessOrEqual(t, p, dim)
			}
		}
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Box
	}{
		{"list of lists", "[[10,20,30,40]]", []Box{{10, 20, 30, 40}}},
		{"flat list", "[10, 20, 30, 40]", []Box{{10, 20, 30, 40}}},
		{"several boxes", " [[1,2,3,4], [5,6,7,8]] ", []Box{{1, 2, 3, 4}, {5, 6, 7, 8}}},
		{"decimals", "[[0.5,1.25,-3,4]]", []Box{{0.5, 1.25, -3, 4}}},
		{"full width punctuation", "【【10，20，30，40】】", []Box{{10, 20, 30, 40}}},
		{"newlines", "[\n  [1, 2, 3, 4]\n]", []Box{{1, 2, 3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes, err := ParseCoordinates(tt.input)

			require.NoError(t, err)
			require.Equal(t, tt.want, boxes)
		})
	}
}

func TestParseCoordinatesRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape bool
	}{
		{"empty", "", false},
		{"expression", "__import__('os').system('id')", false},
		{"arithmetic", "[[1+1,2,3,4]]", false},
		{"trailing garbage", "[[1,2,3,4]] x", false},
		{"unterminated", "[[1,2,3,4]", false},
		{"dangling comma", "[[1,2,3,4],]", false},
		{"bare number", "42", true},
		{"empty list", "[]", true},
		{"three numbers", "[1,2,3]", true},
		{"mixed", "[[1,2,3,4],[1,2]]", true},
		{"too deep", "[[[1,2,3,4]]]", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCoordinates(tt.input)
			require.Error(t, err)

			if tt.shape {
				require.ErrorIs(t, err, ErrShape)
			} else {
				var syntax *SyntaxError
				require.True(t, errors.As(err, &syntax), "expected syntax error, got %v", err)
			}
		})
	}
}

func TestParseTagged(t *testing.T) {
	refs := Parse("<|ref|>figure<|/ref|><|det|>[[10,20,30,40]]<|/det|>")

	require.Len(t, refs, 1)
	require.Equal(t, "figure", refs[0].Label)
	require.Equal(t, EncodingTagged, refs[0].Encoding)
	require.Equal(t, SpaceNormalized, refs[0].Space)
	require.Equal(t, []Region{{Box: Box{10, 20, 30, 40}}}, refs[0].Regions)

	px := ToPixelBox(refs[0].Regions[0].Box, refs[0].Space, 500, 500)
	require.Equal(t, PixelBox{5, 10, 15, 20}, px)
}

func TestParseTaggedKeepsAllLabels(t *testing.T) {
	text := "<|ref|> Title <|/ref|>\n<|det|>[[0,0,999,80]]<|/det|>\n# Report\n" +
		"<|ref|>image<|/ref|><|det|>[[100,100,400,400],[500,500,900,900]]<|/det|>"

	refs := Parse(text)

	require.Len(t, refs, 2)
	require.Equal(t, "Title", refs[0].Label)
	require.False(t, refs[0].IsImage())
	require.True(t, refs[0].IsStructural())

	require.Equal(t, "image", refs[1].Label)
	require.Len(t, refs[1].Regions, 2)
	require.Equal(t, text[refs[1].Start:refs[1].End], "<|ref|>image<|/ref|><|det|>[[100,100,400,400],[500,500,900,900]]<|/det|>")
}

func TestParseSkipsMalformedCoordinates(t *testing.T) {
	text := "<|ref|>image<|/ref|><|det|>[[1,2,oops]]<|/det|> and <|ref|>chart<|/ref|><|det|>[5,6,7,8]<|/det|>"

	refs := Parse(text)

	require.Len(t, refs, 1)
	require.Equal(t, "chart", refs[0].Label)
	require.Equal(t, Box{5, 6, 7, 8}, refs[0].Regions[0].Box)
}

func TestParseInline(t *testing.T) {
	refs := Parse("Intro\nDiagram[[100, 100, 200, 200]]\ncaption[[0,0,10,10]] some text")

	require.Len(t, refs, 2)

	require.Equal(t, "diagram", refs[0].Label)
	require.Equal(t, EncodingInline, refs[0].Encoding)
	require.Equal(t, Box{100, 100, 200, 200}, refs[0].Regions[0].Box)
	require.True(t, refs[0].IsImage())

	require.Equal(t, "caption", refs[1].Label)
	require.True(t, refs[1].IsStructural())
}

func TestParseInlineRequiresWordBoundary(t *testing.T) {
	require.Empty(t, Parse("configure[[1,2,3,4]]"))
	require.Len(t, Parse("fig[[1,2,3,4]]"), 1)
}

func TestParseOrdersByPosition(t *testing.T) {
	text := "photo[[1,1,2,2]] then <|ref|>figure<|/ref|><|det|>[[3,3,4,4]]<|/det|> then chart[[5,5,6,6]]"

	refs := Parse(text)

	require.Len(t, refs, 3)
	require.Equal(t, "photo", refs[0].Label)
	require.Equal(t, "figure", refs[1].Label)
	require.Equal(t, "chart", refs[2].Label)
}

func TestParseWithPixelSpace(t *testing.T) {
	p := NewParser(WithSpace(SpacePixel))

	refs := p.Parse("image[[1,2,3,4]]")

	require.Len(t, refs, 1)
	require.Equal(t, SpacePixel, refs[0].Space)
}

func TestLabelsAreCaseInsensitive(t *testing.T) {
	require.True(t, IsImageLabel("FIGURE"))
	require.True(t, IsImageLabel(" Photo "))
	require.False(t, IsImageLabel("table"))
	require.True(t, IsStructuralLabel("Sub_Title"))
	require.False(t, IsStructuralLabel("figure"))
}

func TestAssign(t *testing.T) {
	refs := Parse("<|ref|>text<|/ref|><|det|>[[0,0,1,1]]<|/det|>" +
		"<|ref|>image<|/ref|><|det|>[[1,1,2,2],[3,3,4,4]]<|/det|> graph[[5,5,6,6]]")

	n := Assign(3, refs)

	require.Equal(t, 3, n)
	require.Empty(t, refs[0].Regions[0].ID)
	require.Equal(t, "page3_img0", refs[1].Regions[0].ID)
	require.Equal(t, "page3_img1", refs[1].Regions[1].ID)
	require.Equal(t, "page3_img2", refs[2].Regions[0].ID)
}
