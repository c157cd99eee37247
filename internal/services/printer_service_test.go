package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-backend/internal/printing"
)

type fakePrinter struct {
	name, text string
	err        error
}

func (f *fakePrinter) Print(ctx context.Context, name, text string) (*printing.Result, error) {
	f.name, f.text = name, text
	if f.err != nil {
		return nil, f.err
	}
	return &printing.Result{Path: "/tmp/" + name + ".txt", Printed: true}, nil
}

func TestPrintText(t *testing.T) {
	fp := &fakePrinter{}
	svc := NewPrinterService(fp, nil, nil)

	res, err := svc.PrintText(context.Background(), "achat_BA-000001", "BON / FACTURE D'ACHAT\n")
	require.NoError(t, err)
	assert.True(t, res.Printed)
	assert.Equal(t, "achat_BA-000001", fp.name)

	_, err = svc.PrintText(context.Background(), "empty", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPrintTextWrapsPrinterErrors(t *testing.T) {
	fp := &fakePrinter{err: errors.New("disk full")}
	svc := NewPrinterService(fp, nil, nil)

	_, err := svc.PrintText(context.Background(), "vente_3", "text")
	assert.ErrorContains(t, err, "failed to print vente_3")
}
