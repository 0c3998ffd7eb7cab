// Package export writes transcripts out as spreadsheets.
package export

import (
	"fmt"

	"github.com/tealeg/xlsx"

	"videochat/internal/app/model"
)

// ToExcel writes a video's transcript segments to an xlsx workbook,
// one row per segment.
func ToExcel(video *model.Video, segments []model.Segment, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcript")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "Video"
	headerRow.AddCell().Value = "Start"
	headerRow.AddCell().Value = "End"
	headerRow.AddCell().Value = "Text"
	headerRow.AddCell().Value = "Translation"
	headerRow.AddCell().Value = "Language"

	for _, s := range segments {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(s.ID)
		row.AddCell().Value = video.OriginalFilename
		row.AddCell().Value = fmt.Sprintf("%.2f", s.Start)
		row.AddCell().Value = fmt.Sprintf("%.2f", s.End)
		row.AddCell().Value = s.Text
		row.AddCell().Value = s.TranslatedText
		row.AddCell().Value = s.LanguageCode
	}

	if err = file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
