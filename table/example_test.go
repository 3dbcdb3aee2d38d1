package table_test

import (
	"fmt"

	"github.com/lvillar/richdoc/content"
	"github.com/lvillar/richdoc/table"
)

func ExampleSpec() {
	f, err := table.Spec{Rows: 1, Cols: 2}.Fragment()
	if err != nil {
		fmt.Println(err)
		return
	}
	t := content.New()
	if err := t.Insert(t.Root(), 0, t.Import(f)...); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(t.String())
	// Output:
	// <table><thead><tr><th>Header 1</th><th>Header 2</th></tr></thead><tbody><tr><td>Cell 1-1</td><td>Cell 1-2</td></tr></tbody></table>
}

func ExampleBuilder() {
	b := table.NewBuilder()
	h := b.AddHeaderRow()
	h.AddCell("Item")
	h.AddCell("Qty").SetAlign("right")
	r := b.AddRow()
	r.AddCell("Paper")
	r.AddCellf("%d", 500).SetAlign("right")

	t := content.New()
	t.Insert(t.Root(), 0, t.Import(b.Fragment())...)
	fmt.Println(t.String())
	// Output:
	// <table><thead><tr><th>Item</th><th style="text-align: right">Qty</th></tr></thead><tbody><tr><td>Paper</td><td style="text-align: right">500</td></tr></tbody></table>
}

func ExampleColumnWidths() {
	fmt.Println(table.ColumnWidths(170, 3))
	// Output:
	// [56 56 58]
}
