package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ReadSource loads extract rows from a local CSV path or an HTTP(S)
// URL. The first CSV record is the header of source column codes.
func ReadSource(ctx context.Context, source string) ([]RawRow, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchCSV(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open extract %s: %w", source, err)
	}
	defer f.Close()
	return parseCSV(f)
}

func fetchCSV(ctx context.Context, url string) ([]RawRow, error) {
	client := resty.New()
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch extract %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch extract %s: status %s", url, resp.Status())
	}
	return parseCSV(bytes.NewReader(resp.Body()))
}

func parseCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read extract header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []RawRow
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read extract row %d: %w", len(rows)+1, err)
		}
		row := make(RawRow, len(header))
		for i, val := range fields {
			if i >= len(header) {
				break
			}
			row[header[i]] = val
		}
		rows = append(rows, row)
	}
	return rows, nil
}
