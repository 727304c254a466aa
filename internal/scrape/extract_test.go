package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `
<html><body>
<div class="cassetteitem">
  <div class="cassetteitem_content-title"> グランドハイツ西新宿 </div>
  <ul><li class="cassetteitem_detail-col1">東京都新宿区西新宿1丁目</li></ul>
  <table>
    <tbody>
      <tr><td>
        <span class="cassetteitem_price--rent">8.5万円</span>
        <span class="cassetteitem_price--administration">5000円</span>
        <span class="cassetteitem_madori">1K</span>
        <span class="cassetteitem_menseki">25.5m²</span>
      </td></tr>
    </tbody>
    <tbody>
      <tr><td>
        <span class="cassetteitem_price--rent">12万円</span>
        <span class="cassetteitem_price--administration">-</span>
        <span class="cassetteitem_madori">1LDK</span>
        <span class="cassetteitem_menseki">40m²</span>
      </td></tr>
    </tbody>
    <tbody>
      <tr><td>
        <span class="cassetteitem_madori">2DK</span>
      </td></tr>
    </tbody>
    <tbody>
      <tr><td>
        <span class="cassetteitem_price--rent">5000円</span>
      </td></tr>
    </tbody>
  </table>
</div>
<div class="cassetteitem">
  <ul><li class="cassetteitem_detail-col1">住所のみ</li></ul>
</div>
</body></html>`

func TestExtractPage(t *testing.T) {
	t.Parallel()

	out, err := ExtractPage([]byte(samplePage), "新宿区")
	require.NoError(t, err)

	// Two valid rooms survive; the missing-rent room, the below-floor room
	// and the title-less cassette are skipped.
	require.Len(t, out.Records, 2)
	assert.Len(t, out.Skips, 3)

	first := out.Records[0]
	assert.Equal(t, "グランドハイツ西新宿", first.Name)
	assert.Equal(t, "東京都新宿区西新宿1丁目", first.Address)
	assert.Equal(t, int64(85000), first.Rent)
	assert.Equal(t, int64(5000), first.AdminFee)
	assert.Equal(t, int64(90000), first.Total)
	assert.Equal(t, "1K", first.Layout)
	assert.Equal(t, "25.5m²", first.AreaSize)
	assert.Equal(t, "新宿区", first.AreaName)

	// "-" admin fee means zero, total equals rent.
	second := out.Records[1]
	assert.Equal(t, int64(120000), second.Rent)
	assert.Equal(t, int64(0), second.AdminFee)
	assert.Equal(t, int64(120000), second.Total)
	assert.Equal(t, "1LDK", second.Layout)
}

func TestExtractPage_TotalInvariant(t *testing.T) {
	t.Parallel()

	out, err := ExtractPage([]byte(samplePage), "新宿区")
	require.NoError(t, err)
	for _, r := range out.Records {
		assert.Equal(t, r.Rent+r.AdminFee, r.Total)
		assert.GreaterOrEqual(t, r.Rent, int64(10000))
	}
}

func TestExtractPage_Empty(t *testing.T) {
	t.Parallel()

	out, err := ExtractPage([]byte("<html><body><p>no listings</p></body></html>"), "新宿区")
	require.NoError(t, err)
	assert.Empty(t, out.Records)
	assert.Empty(t, out.Skips)
}
