package table

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/cohort-analytics/common"
	"github.com/uyouii/cohort-analytics/model"
	"github.com/xuri/excelize/v2"
)

func newAppointments(t *testing.T) *Frame {
	t.Helper()
	frame, err := FromRecords([][]string{
		{"PatientId", "Gender", "Age", "Hipertension", "No-show"},
		{"1", "F", "62", "1", "No"},
		{"2", "M", "56", "0", "No"},
		{"3", "F", "8", "0", "Yes"},
		{"4", "F", "NA", "1", "No"},
		{"5", "M", "76", "1", "Yes"},
	})
	require.NoError(t, err)
	return frame
}

func TestFrameColumns(t *testing.T) {
	frame := newAppointments(t)

	assert.Equal(t, 5, frame.Len())
	assert.Equal(t, []string{"PatientId", "Gender", "Age", "Hipertension", "No-show"}, frame.Names())

	kind, err := frame.Kind("Age")
	require.NoError(t, err)
	assert.Equal(t, model.Numeric, kind)

	kind, err = frame.Kind("Gender")
	require.NoError(t, err)
	assert.Equal(t, model.Categorical, kind)

	ages, err := frame.Floats("Age")
	require.NoError(t, err)
	assert.Equal(t, []float64{62, 56, 8}, ages[:3])
	assert.True(t, math.IsNaN(ages[3]))

	labels, err := frame.Strings("Age")
	require.NoError(t, err)
	assert.Equal(t, "", labels[3])

	genders, err := frame.Strings("Gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "M", "F", "F", "M"}, genders)
}

func TestFrameColumnErrors(t *testing.T) {
	frame := newAppointments(t)

	_, err := frame.Floats("Gender")
	assert.ErrorIs(t, err, common.ErrorColumnType)
	assert.True(t, common.IsInputError(err))

	_, err = frame.Floats("Weight")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)

	_, err = frame.Strings("Weight")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)

	_, err = frame.Kind("Weight")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)

	_, err = FromRecords([][]string{{"only", "header"}})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestSubsetLeavesSourceUntouched(t *testing.T) {
	frame := newAppointments(t)

	sub := frame.Subset([]int{0, 2})
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, 5, frame.Len())

	ids, err := sub.Floats("PatientId")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, ids)

	empty := frame.Subset([]int{})
	assert.Equal(t, 0, empty.Len())
}

func TestWhere(t *testing.T) {
	frame := newAppointments(t)
	genders, err := frame.Strings("Gender")
	require.NoError(t, err)

	women := Where(frame, func(row int) bool { return genders[row] == "F" })
	assert.Equal(t, 3, women.Len())
}

func TestFilter(t *testing.T) {
	frame, err := FromRecords([][]string{
		{"type", "overall", "mmr"},
		{"Public", "100", "100"},
		{"Private", "100", "95.5"},
		{"Charter", "100", "100.0"},
		{"Public", "97.2", "100"},
		{"Public", "NA", "100"},
	})
	require.NoError(t, err)

	full, err := frame.Filter("overall", "100")
	require.NoError(t, err)
	full, err = full.Filter("mmr", "100")
	require.NoError(t, err)
	assert.Equal(t, 2, full.Len())
	types, err := full.Strings("type")
	require.NoError(t, err)
	assert.Equal(t, []string{"Public", "Charter"}, types)
	assert.Equal(t, 5, frame.Len())

	public, err := Equal(frame, "type", "Public")
	require.NoError(t, err)
	assert.Equal(t, 3, public.Len())

	_, err = frame.Filter("overall", "all")
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	_, err = frame.Filter("district", "x")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)
}

func TestCleaning(t *testing.T) {
	frame := newAppointments(t)

	dropped, err := frame.Drop("PatientId")
	require.NoError(t, err)
	assert.NotContains(t, dropped.Names(), "PatientId")
	assert.Contains(t, frame.Names(), "PatientId")

	_, err = frame.Drop("AppointmentID")
	assert.ErrorIs(t, err, common.ErrorColumnNotFound)

	renamed, err := dropped.Rename(map[string]string{"Hipertension": "Hypertension"})
	require.NoError(t, err)
	assert.Contains(t, renamed.Names(), "Hypertension")

	normalized, err := renamed.NormalizeNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"gender", "age", "hypertension", "no_show"}, normalized.Names())

	complete, err := normalized.DropMissing("age")
	require.NoError(t, err)
	assert.Equal(t, 4, complete.Len())
	assert.Equal(t, 5, normalized.Len())
}

func TestNormalizeNamesCollision(t *testing.T) {
	frame, err := FromRecords([][]string{
		{"Age", "age "},
		{"1", "2"},
	})
	require.NoError(t, err)

	_, err = frame.NormalizeNames()
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestAsNumeric(t *testing.T) {
	frame, err := FromRecords([][]string{
		{"state", "xrel"},
		{"Arizona", "1.5"},
		{"Ohio", "none"},
		{"Utah", "3"},
	})
	require.NoError(t, err)

	kind, err := frame.Kind("xrel")
	require.NoError(t, err)
	assert.Equal(t, model.Categorical, kind)

	numeric, err := frame.AsNumeric("xrel")
	require.NoError(t, err)
	values, err := numeric.Floats("xrel")
	require.NoError(t, err)
	assert.Equal(t, 1.5, values[0])
	assert.True(t, math.IsNaN(values[1]))
	assert.Equal(t, 3.0, values[2])
}

func TestPartitionAndDistinct(t *testing.T) {
	frame, err := FromRecords([][]string{
		{"state", "overall"},
		{"Ohio", "90"},
		{"Utah", "80"},
		{"Ohio", "NA"},
		{"NA", "70"},
		{"Ohio", "95"},
	})
	require.NoError(t, err)

	partition, err := Partition(frame, "state", "overall")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ohio", "Utah"}, partition.Keys)
	assert.Equal(t, []float64{90, 95}, partition.Samples["Ohio"])
	assert.Equal(t, [][]float64{{90, 95}, {80}}, partition.Ordered())

	states, err := Distinct(frame, "state")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ohio", "Utah"}, states)

	_, err = Partition(frame, "overall", "state")
	assert.ErrorIs(t, err, common.ErrorColumnType)
}

func TestReadCSV(t *testing.T) {
	input := "state;enroll\nOhio;120\nUtah;80\n"
	frame, err := ReadCSV(strings.NewReader(input), LoadOptions{Delimiter: ';'})
	require.NoError(t, err)

	enroll, err := frame.Floats("enroll")
	require.NoError(t, err)
	assert.Equal(t, []float64{120, 80}, enroll)

	forced, err := ReadCSV(strings.NewReader("zip\n01234\n"), LoadOptions{
		Kinds: map[string]model.ColumnKind{"zip": model.Categorical},
	})
	require.NoError(t, err)
	zips, err := forced.Strings("zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"01234"}, zips)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measles.xlsx")
	book := excelize.NewFile()
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]interface{}{"state", "overall"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]interface{}{"Ohio", 95}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A3", &[]interface{}{"Utah"}))
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	frame, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Len())

	overall, err := frame.Floats("overall")
	require.NoError(t, err)
	assert.Equal(t, 95.0, overall[0])
	assert.True(t, math.IsNaN(overall[1]))

	_, err = ReadXLSX(path, LoadOptions{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestLoadFileUnsupported(t *testing.T) {
	_, err := LoadFile("data.parquet", LoadOptions{})
	assert.ErrorIs(t, err, common.ErrorUnsupported)
}
