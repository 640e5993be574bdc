package csvio_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"TxEngine/internal/csvio"
	"TxEngine/internal/model"
)

type result struct {
	event model.TransactionEvent
	err   error
}

func readAll(t *testing.T, r *csvio.Reader) []result {
	t.Helper()
	var out []result
	for i := 0; i < 100; i++ {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		out = append(out, result{event: event, err: err})
	}
	t.Fatal("reader never reached EOF")
	return nil
}

func TestReader_DecodesRows(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"Withdrawal,2,5,  0.5000  \n" +
		"DISPUTE, 1, 1,\n" +
		"resolve, 1, 1\n" +
		"chargeback,65535,4294967295,\n"

	results := readAll(t, csvio.NewReader(strings.NewReader(input), nil))

	require.Len(t, results, 5)
	for _, r := range results {
		require.NoError(t, r.err)
	}

	assert.Equal(t, model.Deposit, results[0].event.Operation)
	assert.Equal(t, uint16(1), results[0].event.ClientID)
	assert.True(t, results[0].event.Amount.Valid)
	assert.True(t, decimal.NewFromInt(1).Equal(results[0].event.Amount.Decimal))

	assert.Equal(t, model.Withdrawal, results[1].event.Operation)
	assert.Equal(t, uint32(5), results[1].event.TransactionID)
	assert.Equal(t, "0.5", results[1].event.Amount.Decimal.String())

	assert.Equal(t, model.Dispute, results[2].event.Operation)
	assert.False(t, results[2].event.Amount.Valid)

	assert.Equal(t, model.Resolve, results[3].event.Operation)
	assert.False(t, results[3].event.Amount.Valid)

	assert.Equal(t, model.Chargeback, results[4].event.Operation)
	assert.Equal(t, uint16(65535), results[4].event.ClientID)
	assert.Equal(t, uint32(4294967295), results[4].event.TransactionID)
}

func TestReader_ColumnOrderAndHeaderCase(t *testing.T) {
	input := " Amount ,TX,Client, TYPE\n2.25,7,3,deposit\n"

	results := readAll(t, csvio.NewReader(strings.NewReader(input), nil))

	require.Len(t, results, 1)
	require.NoError(t, results[0].err)
	event := results[0].event
	assert.Equal(t, model.Deposit, event.Operation)
	assert.Equal(t, uint16(3), event.ClientID)
	assert.Equal(t, uint32(7), event.TransactionID)
	assert.Equal(t, "2.25", event.Amount.Decimal.String())
}

func TestReader_MalformedRows(t *testing.T) {
	testCases := []struct {
		name string
		row  string
	}{
		{name: "Non-numeric client", row: "deposit,abc,1,1.0"},
		{name: "Client out of range", row: "deposit,65536,1,1.0"},
		{name: "Negative tx", row: "deposit,1,-1,1.0"},
		{name: "Unknown type", row: "transfer,1,1,1.0"},
		{name: "Missing tx", row: "deposit,1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := "type,client,tx,amount\n" + tc.row + "\ndeposit,2,2,3\n"

			results := readAll(t, csvio.NewReader(strings.NewReader(input), nil))

			require.Len(t, results, 2)
			assert.ErrorIs(t, results[0].err, model.ErrMalformedRecord)
			require.NoError(t, results[1].err)
			assert.Equal(t, uint16(2), results[1].event.ClientID)
		})
	}
}

func TestReader_InvalidAmountIsDropped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	input := "type,client,tx,amount\ndeposit,1,1,ten\n"

	results := readAll(t, csvio.NewReader(strings.NewReader(input), zap.New(core)))

	require.Len(t, results, 1)
	require.NoError(t, results[0].err)
	assert.False(t, results[0].event.Amount.Valid)
	assert.Equal(t, 1, logs.FilterMessage("csv.amount_invalid").Len())
}

func TestReader_Header(t *testing.T) {
	t.Run("Empty input", func(t *testing.T) {
		_, err := csvio.NewReader(strings.NewReader(""), nil).Next()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("BOM header", func(t *testing.T) {
		input := "\ufefftype,client,tx,amount\ndeposit,1,1,10\n"

		results := readAll(t, csvio.NewReader(strings.NewReader(input), nil))

		require.Len(t, results, 1)
		require.NoError(t, results[0].err)
		assert.Equal(t, model.Deposit, results[0].event.Operation)
		assert.Equal(t, uint16(1), results[0].event.ClientID)
		assert.Equal(t, "10", results[0].event.Amount.Decimal.String())
	})

	t.Run("Missing column", func(t *testing.T) {
		_, err := csvio.NewReader(strings.NewReader("type,client,amount\n"), nil).Next()
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrMalformedRecord)
		assert.Contains(t, err.Error(), `"tx"`)
	})
}

func testAccounts() []model.AccountStatus {
	return []model.AccountStatus{
		{
			ClientID:  1,
			Available: decimal.RequireFromString("1.5"),
			Held:      decimal.Zero,
			Total:     decimal.RequireFromString("1.5"),
		},
		{
			ClientID:  2,
			Available: decimal.RequireFromString("2.0000").Round(4),
			Held:      decimal.RequireFromString("0.1234"),
			Total:     decimal.RequireFromString("2.1234"),
			Locked:    true,
		},
	}
}

func TestWriter_Write(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, csvio.NewWriter(&buf).Write(testAccounts()))

	expected := "client,available,held,total,locked\n" +
		"1,1.5,0,1.5,false\n" +
		"2,2,0.1234,2.1234,true\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_NoAccounts(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, csvio.NewWriter(&buf).Write(nil))

	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestTableWriter_Write(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, csvio.NewTableWriter(&buf).Write(testAccounts()))

	out := buf.String()
	assert.Contains(t, out, "available")
	assert.Contains(t, out, "0.1234")
	assert.Contains(t, out, "true")
}

func TestNewStatementWriter(t *testing.T) {
	var buf bytes.Buffer

	w, err := csvio.NewStatementWriter(csvio.FormatCSV, &buf)
	require.NoError(t, err)
	assert.IsType(t, &csvio.Writer{}, w)

	w, err = csvio.NewStatementWriter(csvio.FormatTable, &buf)
	require.NoError(t, err)
	assert.IsType(t, &csvio.TableWriter{}, w)

	_, err = csvio.NewStatementWriter("xml", &buf)
	assert.Error(t, err)
}
