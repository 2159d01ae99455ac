package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/npillmayer/otface/ot"
	"github.com/pterm/pterm"
)

// tableOp selects a table. Without argument, the current table is printed.
// "table:cmap:hex" dumps the first bytes of the table.
func tableOp(intp *Intp, op *Op) (bool, error) {
	tag, ok := op.hasArg()
	if !ok {
		if intp.table == 0 {
			return false, errNoTable
		}
		tag = intp.table.String()
	}
	t := intp.tf.Font().Table(ot.T(tag))
	if t == nil {
		return false, fmt.Errorf("table %s not found in font", tag)
	}
	intp.table = ot.T(tag)
	offset, size := t.Extent()
	pterm.Printf("table %s at offset %d, %d bytes, %s\n", intp.table, offset, size, tableKind(t))
	if err := intp.tf.Font().TableError(intp.table); err != nil {
		pterm.Error.Println(err)
	}
	if op.format == "hex" {
		b := t.Binary()
		n := min(len(b), 256)
		pterm.Print(hex.Dump(b[:n]))
	}
	tracer().Infof("setting table: %v", tag)
	return false, nil
}

func tableKind(t ot.Table) string {
	self := t.Self()
	switch {
	case self.AsHead() != nil, self.AsHHea() != nil, self.AsMaxP() != nil,
		self.AsHMtx() != nil, self.AsOS2() != nil, self.AsCMap() != nil,
		self.AsName() != nil, self.AsKern() != nil, self.AsGPos() != nil,
		self.AsLoca() != nil, self.AsGlyf() != nil:
		return "interpreted"
	}
	return "not interpreted"
}

// tablesOp lists all tables of the font. Tables which could not be interpreted
// show the reason.
func tablesOp(intp *Intp, op *Op) (bool, error) {
	otf := intp.tf.Font()
	data := [][]string{
		{"Tag", "Offset", "Size", "Status"},
	}
	for _, tag := range otf.TableTags() {
		offset, size := otf.Table(tag).Extent()
		status := tableKind(otf.Table(tag))
		if err := otf.TableError(tag); err != nil {
			status = err.Error()
		}
		data = append(data, []string{
			tag.String(),
			strconv.FormatUint(uint64(offset), 10),
			strconv.FormatUint(uint64(size), 10),
			status,
		})
	}
	return renderTable(data)
}
