package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/declpg/declpg/internal/plan"
	"github.com/declpg/declpg/internal/schema"
)

func TestInstructionLabel(t *testing.T) {
	cases := []struct {
		in   *plan.Instruction
		want string
	}{
		{&plan.Instruction{Kind: plan.CreateSchema, Name: "app"}, "app"},
		{&plan.Instruction{Kind: plan.CreateTable, Table: schema.QName{Schema: "app", Local: "orders"}}, "app.orders"},
		{&plan.Instruction{Kind: plan.AddColumn, Table: schema.QName{Schema: "app", Local: "orders"}, ColumnName: "total"}, "app.orders.total"},
		{&plan.Instruction{Kind: plan.AddConstraint, Table: schema.QName{Schema: "app", Local: "orders"}, Name: "orders_pkey"}, "app.orders.orders_pkey"},
		{&plan.Instruction{Kind: plan.CreateOrReplaceFunction, Function: &schema.Function{QName: schema.QName{Schema: "app", Local: "total"}}}, "app.total"},
	}
	for _, c := range cases {
		if got := instructionLabel(c.in); got != c.want {
			t.Errorf("instructionLabel(%v) = %q, want %q", c.in.Kind, got, c.want)
		}
	}
}

func TestPrintReportNoChanges(t *testing.T) {
	out := captureStdout(t, func() {
		reportNoColor = true
		printReport(nil)
	})
	if !strings.Contains(out, "up to date") {
		t.Errorf("expected an up-to-date message, got %q", out)
	}
}

func TestPrintReportSummarizesCounts(t *testing.T) {
	instrs := []*plan.Instruction{
		{Kind: plan.CreateTable, Table: schema.QName{Schema: "app", Local: "orders"}},
		{Kind: plan.DropTable, Table: schema.QName{Schema: "app", Local: "legacy"}},
	}
	out := captureStdout(t, func() {
		reportNoColor = true
		printReport(instrs)
	})
	if !strings.Contains(out, "1 to add") || !strings.Contains(out, "1 to drop") {
		t.Errorf("expected summary counts in output, got %q", out)
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}
