package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/redweb-api/internal/domain/entity"
)

const characterSheet = "Персонажи"

func characterHeaders() []string {
	return append([]string{"ID", "Имя"}, entity.StatNames...)
}

// writeCharactersXLSX пишет персонажей в Excel через StreamWriter
func writeCharactersXLSX(w io.Writer, characters []entity.Character) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", characterSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(characterSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headers := characterHeaders()
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, c := range characters {
		row := []interface{}{c.ID, sanitizeForExcel(c.Name)}
		for _, v := range c.Stats() {
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}

// writeCharactersCSV пишет персонажей в CSV с BOM для Excel
func writeCharactersCSV(w io.Writer, characters []entity.Character) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(characterHeaders()); err != nil {
		return err
	}
	for _, c := range characters {
		record := []string{strconv.FormatUint(uint64(c.ID), 10), sanitizeForExcel(c.Name)}
		for _, v := range c.Stats() {
			record = append(record, strconv.Itoa(v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
