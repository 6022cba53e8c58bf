package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/firevault/firevault/internal/common"
)

// AddItem collects a new vault item and stores it encrypted under a
// passphrase of the user's choosing.
func (a *App) AddItem(ctx context.Context) error {
	title, err := GetSimpleText(ctx, a.input, "Title", a.out)
	if err != nil {
		return err
	}
	recordType, err := GetSimpleText(ctx, a.input, "Type (e.g. password, note)", a.out)
	if err != nil {
		return err
	}
	data, err := GetMultiline(ctx, a.input, "Data (finish with an empty line)", a.out)
	if err != nil {
		return err
	}
	passphrase, err := GetPassword("Encryption passphrase", a.out)
	if err != nil {
		return err
	}

	id, err := a.store.Save(ctx, title, data, recordType, passphrase, a.currentUsername())
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, "Title must not be empty.")
			return nil
		}
		return err
	}

	fmt.Fprintln(a.out, "Saved:", id)
	return nil
}

func (a *App) List(ctx context.Context) error {
	records := a.store.List(ctx, a.currentUsername())
	if len(records) == 0 {
		fmt.Fprintln(a.out, "Vault is empty.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(a.out, "%s  %-20s  %-10s  %s\n",
			r.ID, r.Title, r.Type, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// Show decrypts a single item. A wrong passphrase is reported without the
// underlying error chain.
func (a *App) Show(ctx context.Context) error {
	id, err := GetSimpleText(ctx, a.input, "Item id", a.out)
	if err != nil {
		return err
	}
	passphrase, err := GetPassword("Passphrase", a.out)
	if err != nil {
		return err
	}

	plaintext, err := a.store.DecryptOne(ctx, id, passphrase, a.currentUsername())
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			fmt.Fprintln(a.out, "No such item.")
			return nil
		case errors.Is(err, common.ErrDecryptionFailed):
			fmt.Fprintln(a.out, "Decryption failed. Wrong passphrase?")
			return nil
		}
		return err
	}

	fmt.Fprintln(a.out, plaintext)
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(ctx, a.input, "Item id", a.out)
	if err != nil {
		return err
	}
	if !GetConfirmation(ctx, a.input, "Delete item "+id+"?", a.out) {
		return nil
	}

	deleted, err := a.store.Delete(ctx, id, a.currentUsername())
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(a.out, "No such item.")
		return nil
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}
