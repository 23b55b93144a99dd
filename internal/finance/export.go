package finance

import (
	"context"
	"fmt"

	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Операции"

// Export все операции чата в xlsx, от новых к старым. Возвращает содержимое и имя файла.
func (e *Executor) Export(ctx context.Context, chatID int64) ([]byte, string, error) {
	entries, err := e.store.Entries(ctx, ledger.Query{ChatID: chatID})
	if err != nil {
		return nil, "", fmt.Errorf("export entries: %w", err)
	}
	bal, err := e.store.Balance(ctx, chatID)
	if err != nil {
		return nil, "", fmt.Errorf("export balance: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, exportSheet); err != nil {
		return nil, "", err
	}

	header := []interface{}{"Дата", "Тип", "Сумма", "Сотрудник", "Заметка", "Внес"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("export header: %w", err)
	}

	row := 2
	for _, en := range entries {
		_, name := typeName(en.Type)
		sign, amount := signed(en)
		value := amount.InexactFloat64()
		if sign == "-" {
			value = -value
		}
		excelRow := []interface{}{
			formatTime(en.CreatedAt, e.loc),
			name,
			value,
			string(en.Employee),
			en.DisplayNote(),
			en.AuthorName,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheet, cell, &excelRow); err != nil {
			return nil, "", fmt.Errorf("export row %d: %w", row, err)
		}
		row++
	}

	// итог банка под таблицей
	cell, _ := excelize.CoordinatesToCellName(1, row)
	footer := []interface{}{"Банк", "", bal.Amount.InexactFloat64()}
	if err := f.SetSheetRow(exportSheet, cell, &footer); err != nil {
		return nil, "", fmt.Errorf("export footer: %w", err)
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 18)
	_ = f.SetColWidth(exportSheet, "E", "E", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("export write: %w", err)
	}
	name := fmt.Sprintf("finance_%d_%s.xlsx", chatID, e.now().In(e.loc).Format("2006-01-02"))
	return buf.Bytes(), name, nil
}
