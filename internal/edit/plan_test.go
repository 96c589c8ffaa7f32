package edit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvatic/opustags/internal/edit"
	"github.com/jvatic/opustags/internal/opus"
)

func TestSelector(t *testing.T) {
	bare := edit.ParseSelector("artist")
	assert.False(t, bare.HasValue)
	assert.True(t, bare.Match("ARTIST=x"))
	assert.True(t, bare.Match("Artist="))
	assert.False(t, bare.Match("ARTISTS=x"))
	assert.False(t, bare.Match("artist"))

	exact := edit.ParseSelector("ARTIST=You")
	assert.True(t, exact.HasValue)
	assert.True(t, exact.Match("artist=You"))
	assert.False(t, exact.Match("ARTIST=you"))
	assert.False(t, exact.Match("ARTIST=You "))
	assert.Equal(t, "ARTIST=You", exact.String())

	empty := edit.ParseSelector("A=")
	assert.True(t, empty.Match("A="))
	assert.False(t, empty.Match("A=b"))
}

func TestPlanSet(t *testing.T) {
	tags := &opus.Tags{Comments: []string{"TITLE=Old", "ARTIST=Me", "title=Older"}}
	var p edit.Plan
	require.NoError(t, p.Set("TITLE=New"))
	assert.Error(t, p.Set("TITLE"))
	p.Apply(tags)
	assert.Equal(t, []string{"ARTIST=Me", "TITLE=New"}, tags.Comments)
	assert.Equal(t, []string{"New"}, tags.Get("title"))
}

func TestPlanDeleteExact(t *testing.T) {
	tags := &opus.Tags{Comments: []string{"ARTIST=You", "ARTIST=Me"}}
	var p edit.Plan
	p.Remove(edit.ParseSelector("ARTIST=You"))
	p.Apply(tags)
	assert.Equal(t, []string{"ARTIST=Me"}, tags.Comments)
}

func TestPlanOrder(t *testing.T) {
	vendor := "new vendor"
	tags := &opus.Tags{Vendor: "old", Comments: []string{"A=1", "B=2", "C=3"}}
	p := edit.Plan{Vendor: &vendor}
	p.Add("B=4")
	p.Remove(edit.ParseSelector("b"))
	p.Add("D=5")
	p.Apply(tags)

	assert.Equal(t, "new vendor", tags.Vendor)
	// Deletions run before additions, whatever the order they were given in.
	assert.Equal(t, []string{"A=1", "C=3", "B=4", "D=5"}, tags.Comments)
}

func TestPlanDeleteAll(t *testing.T) {
	tags := &opus.Tags{Vendor: "v", Comments: []string{"A=1", "B=2"}, ExtraData: []byte{1}}
	p := edit.Plan{DeleteAll: true, Deletions: []edit.Selector{{Name: "Z"}}}
	p.Add("C=3")
	p.Apply(tags)
	assert.Equal(t, []string{"C=3"}, tags.Comments)
	assert.Equal(t, "v", tags.Vendor)
	assert.Equal(t, []byte{1}, tags.ExtraData)
}

func TestPlanCover(t *testing.T) {
	old := opus.CoverComment(opus.MakeCover([]byte("old")))
	tags := &opus.Tags{Comments: []string{old, "TITLE=x", "metadata_block_picture=AAAA"}}
	p := edit.Plan{Cover: []byte{0x89, 'P', 'N', 'G'}}
	p.Apply(tags)

	require.Len(t, tags.Comments, 2)
	assert.Equal(t, "TITLE=x", tags.Comments[0])
	pic, err := opus.ExtractCover(tags)
	require.NoError(t, err)
	assert.Equal(t, "image/png", pic.MIME)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, pic.ImageData)
}

func TestPlanEmpty(t *testing.T) {
	var p edit.Plan
	assert.True(t, p.Empty())

	tags := &opus.Tags{Vendor: "v", Comments: []string{"A=1"}}
	p.Apply(tags)
	assert.Equal(t, []string{"A=1"}, tags.Comments)

	p.Add("B=2")
	assert.False(t, p.Empty())
	assert.False(t, (&edit.Plan{DeleteAll: true}).Empty())
	assert.False(t, (&edit.Plan{Cover: []byte{}}).Empty())
}
