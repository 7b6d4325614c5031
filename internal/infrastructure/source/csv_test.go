package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

func TestParseDelimited(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "simple rows",
			input: "a,b,c\n1,2,3\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:  "quoted comma and escaped quote",
			input: `id,title` + "\n" + `p1,"Rose ""Eau"", Pháp"`,
			want:  [][]string{{"id", "title"}, {"p1", `Rose "Eau", Pháp`}},
		},
		{
			name:  "line break inside quotes",
			input: "id,description\np1,\"line one\nline two\"\n",
			want:  [][]string{{"id", "description"}, {"p1", "line one\nline two"}},
		},
		{
			name:  "CRLF is one terminator",
			input: "a,b\r\n1,2\r\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "blank lines produce no rows",
			input: "a,b\n\n\n1,2\n\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "empty fields keep their position",
			input: "a,,c\n,,\n",
			want:  [][]string{{"a", "", "c"}, {"", "", ""}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDelimited(tt.input))
		})
	}
}

func TestEncodeField_RoundTrip(t *testing.T) {
	values := []string{
		`Rose "Eau", Pháp`,
		"plain",
		`""`,
		"multi\r\nline, with \"quotes\"",
		"",
	}
	for i := 0; i < 50; i++ {
		values = append(values, gofakeit.Sentence(8)+`, "`+gofakeit.Word()+`"`)
	}

	for _, v := range values {
		line := EncodeField("x") + "," + EncodeField(v)
		rows := ParseDelimited(line)
		require.Len(t, rows, 1, "value %q", v)
		require.Len(t, rows[0], 2, "value %q", v)
		assert.Equal(t, v, rows[0][1])
	}
}

func TestParseCSV(t *testing.T) {
	t.Run("maps columns by header name", func(t *testing.T) {
		input := "\uFEFFID, Title ,Description,Brand,Price,Image_Link,Link\n" +
			"p1,Rose Eau,\"Xuất xứ Pháp, hoa\",Maison,1.200.000 VND,https://img/p1.jpg,https://shop/p1\n"

		result, err := ParseCSV(input, SeedColumns)
		require.NoError(t, err)
		require.Len(t, result.Records, 1)

		r := result.Records[0]
		assert.Equal(t, 1, r.Row)
		assert.Equal(t, "p1", r.ID)
		assert.Equal(t, "Rose Eau", r.Title)
		assert.Equal(t, "Xuất xứ Pháp, hoa", r.Description)
		assert.Equal(t, "1.200.000 VND", r.Price)
		assert.Equal(t, "https://img/p1.jpg", r.ImageLink)
	})

	t.Run("handle stands in for id", func(t *testing.T) {
		result, err := ParseCSV("handle,description\nrose-eau,Hoa hồng\n", RefreshColumns)
		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "rose-eau", result.Records[0].ID)
		assert.Empty(t, result.Records[0].Title)
	})

	t.Run("skips short rows and rows without id", func(t *testing.T) {
		input := "id,title,description\n" +
			"p1,One,desc\n" +
			"lonely\n" +
			",No id,desc\n" +
			"p2,Two\n"

		result, err := ParseCSV(input, []string{ColumnID})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Skipped)
		require.Len(t, result.Records, 2)
		assert.Equal(t, "p2", result.Records[1].ID)
		assert.Empty(t, result.Records[1].Description)
	})

	t.Run("names every missing required column", func(t *testing.T) {
		_, err := ParseCSV("title,brand\nRose,Maison\n", SeedColumns)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMissingColumns))

		var missing *domain.MissingColumnsError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, []string{"id", "description", "price", "image_link", "link"}, missing.Columns)
		assert.True(t, strings.Contains(err.Error(), "image_link"))
	})

	t.Run("id column is always required", func(t *testing.T) {
		_, err := ParseCSV("title,description\nRose,Hoa\n", nil)
		assert.ErrorIs(t, err, domain.ErrMissingColumns)
	})

	t.Run("empty document is malformed", func(t *testing.T) {
		_, err := ParseCSV("\uFEFF", SeedColumns)
		assert.ErrorIs(t, err, domain.ErrMalformedSource)
	})
}
