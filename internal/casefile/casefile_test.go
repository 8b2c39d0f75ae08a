package casefile_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/stretchr/testify/require"
)

const minimalCase = `
title: "Test case"
victim:
  name: "Victim"
  time_of_death: "9:00 PM"
  location: "Office"
suspects:
  - id: s1
    name: "Alice"
    is_murderer: true
    phone_number: "555-0001"
  - id: s2
    name: "Bob"
    phone_number: "555-0002"
    alibi_id: "CUSTOM-7"
evidence:
  location_data:
    s1_phone:
      "9:30 PM": {lat: 1, lng: 2, location: "Late"}
      "8:00 PM": {lat: 3, lng: 4, location: "Early"}
  footage_data:
    hall_camera:
      "9:00-9:30 PM":
        visible_people: ["Alice"]
        quality: "Clear"
        key_frame: "Alice runs."
        unlocks: ["glass"]
      unlocks: ["knife"]
      "8:00-9:00 PM":
        visible_people: []
        quality: "Dark"
        key_frame: "Nothing."
    a_camera:
      "1-2 PM":
        visible_people: ["Bob"]
        quality: "Clear"
        key_frame: "Bob waves."
  dna_evidence:
    glass:
      primary_match: s1
      confidence: "High"
    knife:
      matches: [s1, s2]
  alibis:
    s2:
      contact: "555-0099"
      truth: "Telling truth"
      verifiable: true
`

func TestParse(t *testing.T) {
	c, err := casefile.Parse([]byte(minimalCase))
	require.NoError(t, err)

	require.Equal(t, "Test case", c.Title)
	require.Equal(t, "ALIBI-100", c.Suspects[0].AlibiID)
	require.Equal(t, "CUSTOM-7", c.Suspects[1].AlibiID)
	require.Equal(t, "Alice", c.Murderer().Name)
	require.Equal(t, "Unknown", c.SuspectName("nobody"))

	history := c.Evidence.LocationData["s1_phone"]
	require.Equal(t, []string{"9:30 PM", "8:00 PM"}, history.Timestamps())

	require.Equal(t, []string{"hall_camera", "a_camera"}, c.Cameras())
	hall := c.Evidence.FootageData[0]
	require.Equal(t, []string{"knife"}, hall.Unlocks)
	require.Equal(t, []string{"9:00-9:30 PM", "8:00-9:00 PM"}, hall.TimeRanges())
	require.Equal(t, []string{"glass"}, hall.Clips[0].Unlocks)

	require.True(t, c.Evidence.DNA["knife"].Mixed())
	require.False(t, c.Evidence.DNA["glass"].Mixed())

	s, ok := c.SuspectByAlibiID("custom-7")
	require.True(t, ok)
	require.Equal(t, "s2", s.ID)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "empty document",
			doc:  "  \n",
		},
		{
			name: "no murderer",
			doc: `
title: t
victim: {name: v}
suspects:
  - {id: s1, name: A}
`,
		},
		{
			name: "two murderers",
			doc: `
title: t
victim: {name: v}
suspects:
  - {id: s1, name: A, is_murderer: true}
  - {id: s2, name: B, is_murderer: true}
`,
		},
		{
			name: "duplicate suspect id",
			doc: `
title: t
victim: {name: v}
suspects:
  - {id: s1, name: A, is_murderer: true}
  - {id: s1, name: B}
`,
		},
		{
			name: "footage unlocks unknown evidence",
			doc: `
title: t
victim: {name: v}
suspects:
  - {id: s1, name: A, is_murderer: true}
evidence:
  footage_data:
    cam:
      unlocks: [missing]
      "1-2 PM": {visible_people: [A]}
`,
		},
		{
			name: "dna references unknown suspect",
			doc: `
title: t
victim: {name: v}
suspects:
  - {id: s1, name: A, is_murderer: true}
evidence:
  dna_evidence:
    x: {primary_match: s9}
`,
		},
		{
			name: "location data for unknown phone",
			doc: `
title: t
victim: {name: v}
suspects:
  - {id: s1, name: A, is_murderer: true}
evidence:
  location_data:
    s2_phone:
      "1 PM": {lat: 1, lng: 1, location: x}
`,
		},
		{
			name: "camera without clips",
			doc: `
title: t
victim: {name: v}
suspects:
  - {id: s1, name: A, is_murderer: true}
evidence:
  footage_data:
    cam:
      unlocks: []
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := casefile.Parse([]byte(tt.doc))
			require.Error(t, err)
			require.True(t, errors.Is(err, casefile.ErrInvalidCase), "got %v", err)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := casefile.Parse([]byte("title: t\nplot_twist: yes\n"))
	require.Error(t, err)
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    casefile.Difficulty
		wantErr bool
	}{
		{in: "", want: casefile.Medium},
		{in: "easy", want: casefile.Easy},
		{in: " HARD ", want: casefile.Hard},
		{in: "nightmare", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := casefile.ParseDifficulty(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, casefile.ErrUnknownDifficulty)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEmbedded(t *testing.T) {
	lib, err := casefile.Embedded()
	require.NoError(t, err)

	keys := make([]string, 0, 3)
	for _, c := range lib.All() {
		require.NotNil(t, c)
		keys = append(keys, c.Key)
	}
	require.Equal(t, []string{"coffee_shop", "silicon_valley", "art_gallery"}, keys)

	medium := lib.Case(casefile.Medium)
	require.Contains(t, medium.Cameras(), "10th_floor_camera")
	require.Equal(t, []string{"suspect_1", "suspect_2"}, medium.Evidence.DNA["sample_A"].Matches)

	failures, err := casefile.ValidateAll(casefile.EmbeddedFS())
	require.NoError(t, err)
	require.Empty(t, failures)
}

func TestValidateAll(t *testing.T) {
	fsys := fstest.MapFS{
		"good.yaml": {Data: []byte(minimalCase)},
		"bad.yaml":  {Data: []byte("title: t\n")},
		"notes.txt": {Data: []byte("ignored")},
	}
	failures, err := casefile.ValidateAll(fsys)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Contains(t, failures, "bad.yaml")
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"coffee_shop.yaml", "silicon_valley.yaml", "art_gallery.yaml"} {
		data, err := fs.ReadFile(casefile.EmbeddedFS(), name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	lib, err := casefile.Open(dir)
	require.NoError(t, err)
	require.Equal(t, "coffee_shop", lib.Case(casefile.Easy).Key)

	require.NoError(t, os.Remove(filepath.Join(dir, "art_gallery.yaml")))
	_, err = casefile.Open(dir)
	require.Error(t, err)
}
