package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/raine/reseller-lens/internal/batch"
	"github.com/raine/reseller-lens/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultOf(records ...listing.Record) batch.Result {
	r := batch.Result{Attempted: len(records), Succeeded: len(records)}
	for i, rec := range records {
		r.Entries = append(r.Entries, batch.Entry{Index: i, Record: rec})
	}
	return r
}

func TestEncodeCSV_SingleRecord(t *testing.T) {
	rec := listing.NewRecord(map[string]string{
		listing.FieldTitle:       "Shoe",
		listing.FieldPrice:       "1500",
		listing.FieldDescription: "Good",
		listing.FieldTip:         "Sell fast",
	})

	data, err := EncodeCSV(resultOf(rec))
	require.NoError(t, err)

	assert.Equal(t, "Title,Price,Description,Tip,Caption\nShoe,1500,Good,Sell fast,\n", string(data))
}

func TestEncodeCSV_QuotesSpecialCharacters(t *testing.T) {
	rec := listing.NewRecord(map[string]string{
		listing.FieldTitle:       `Chair, oak`,
		listing.FieldPrice:       "₹2,000",
		listing.FieldDescription: "Line one\nLine two",
		listing.FieldTip:         `Say "vintage"`,
		listing.FieldCaption:     "🔥",
	})

	data, err := EncodeCSV(resultOf(rec))
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{`Chair, oak`, "₹2,000", "Line one\nLine two", `Say "vintage"`, "🔥"}, rows[1])
	assert.Contains(t, string(data), `"Say ""vintage"""`)
}

func TestEncodeCSV_MissingFieldsAreEmptyCells(t *testing.T) {
	rec := listing.NewRecord(map[string]string{listing.FieldTitle: "Lamp"})

	data, err := EncodeCSV(resultOf(rec))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "None")
	assert.NotContains(t, string(data), "<nil>")
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Lamp,,,,", lines[1])
}

func TestEncodeCSV_HeaderIsFixedForEmptyResult(t *testing.T) {
	data, err := EncodeCSV(batch.Result{})
	require.NoError(t, err)
	assert.Equal(t, "Title,Price,Description,Tip,Caption\n", string(data))
}

func TestEncodeCSV_IsDeterministic(t *testing.T) {
	build := func() batch.Result {
		return resultOf(
			listing.NewRecord(map[string]string{listing.FieldTitle: "A", listing.FieldPrice: "1", listing.FieldTip: "t", listing.FieldCaption: "c"}),
			listing.NewRecord(map[string]string{listing.FieldDescription: "d,e", listing.FieldTitle: "B"}),
		)
	}

	first, err := EncodeCSV(build())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := EncodeCSV(build())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func sampleRecords() []listing.Record {
	return []listing.Record{
		listing.NewRecord(map[string]string{
			listing.FieldTitle:       "Nike Air Max",
			listing.FieldPrice:       "₹1,500",
			listing.FieldDescription: "Worn twice,\n9/10",
			listing.FieldTip:         `Use "limited"`,
			listing.FieldCaption:     "🔥 kicks",
		}),
		listing.NewRecord(map[string]string{
			listing.FieldTitle:       "Desk lamp",
			listing.FieldPrice:       "ask",
			listing.FieldDescription: "Works",
			listing.FieldTip:         "Bundle a bulb",
		}),
		listing.NewRecord(map[string]string{
			listing.FieldTitle: "Watch",
			listing.FieldPrice: "900",
			listing.FieldTip:   "Polish it",
		}),
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	records := sampleRecords()

	data, err := EncodeCSV(resultOf(records...))
	require.NoError(t, err)

	decoded, err := DecodeCSV(data)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestCSV_RoundTripWindowsLineEndings(t *testing.T) {
	raw := "Phone | 12000 | Screen mint\r\nBattery 91%\rCharger included | Reset it first | 📱 Deal\r\n"
	records := []listing.Record{listing.Parse(raw, listing.BatchContract().Spec)}
	require.Equal(t, "Screen mint\nBattery 91%\nCharger included", records[0].Value(listing.FieldDescription))

	data, err := EncodeCSV(resultOf(records...))
	require.NoError(t, err)

	decoded, err := DecodeCSV(data)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestDecodeCSV_RejectsForeignHeader(t *testing.T) {
	_, err := DecodeCSV([]byte("Name,Cost,Notes,Foo,Bar\na,b,c,d,e\n"))
	assert.ErrorIs(t, err, ErrHeaderMismatch)

	_, err = DecodeCSV(nil)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestXLSX_RoundTrip(t *testing.T) {
	records := sampleRecords()

	data, err := EncodeXLSX(resultOf(records...))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := DecodeXLSX(data)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestBuildFilename(t *testing.T) {
	ts := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "listings_2026-10-16_3f2a9c1d.csv", BuildFilename("listings", "3f2a9c1d-7e4b-4c1a", "csv", ts))
	assert.Equal(t, "my_shop_2026-10-16.xlsx", BuildFilename("my shop!", "", ".xlsx", ts))
	assert.Equal(t, "listings_2026-10-16.csv", BuildFilename("***", "", "csv", ts))
}
