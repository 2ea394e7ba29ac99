package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pantrysync/restock/internal/client/models"
	"github.com/pantrysync/restock/internal/client/services"
)

func (a *App) printItems(items []models.Item) {
	if len(items) == 0 {
		fmt.Println("Empty list.")
		return
	}
	for n, item := range items {
		line := fmt.Sprintf("%3d. %s - %g %s [%s]", n+1, item.Name, item.Quantity, item.Unit, item.Category)
		if item.Barcode != "" {
			line += " #" + item.Barcode
		}
		fmt.Println(line)
	}
}

// List prints the restock list and remembers it for numeric selection.
func (a *App) List(ctx context.Context) error {
	items := a.items.List(ctx, models.StatusActive, "")
	a.lastListing = items
	a.printItems(items)
	return nil
}

// History prints already-bought items.
func (a *App) History(ctx context.Context) error {
	items := a.items.List(ctx, models.StatusHistory, "")
	a.lastListing = items
	a.printItems(items)
	return nil
}

func (a *App) promptItemFields(ctx context.Context, defaults services.AddParams) (services.AddParams, error) {
	p := defaults

	name, err := GetSimpleText(a.reader, promptWithDefault("Name", p.Name), os.Stdout)
	if err != nil {
		return p, err
	}
	if name != "" {
		p.Name = name
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}

	description, err := GetSimpleText(a.reader, promptWithDefault("Description", p.Description), os.Stdout)
	if err != nil {
		return p, err
	}
	if description != "" {
		p.Description = description
	}

	fmt.Println("Categories:", strings.Join(a.items.Categories(ctx), ", "))
	category, err := GetSimpleText(a.reader, promptWithDefault("Category", p.Category), os.Stdout)
	if err != nil {
		return p, err
	}
	if category != "" {
		p.Category = category
	}
	if p.Category == "" {
		p.Category = "Pantry"
	}

	if p.Quantity == 0 {
		p.Quantity = 1
	}
	p.Quantity, err = GetFloat(a.reader, promptWithDefault("Quantity", fmt.Sprintf("%g", p.Quantity)), p.Quantity, os.Stdout)
	if err != nil {
		return p, err
	}

	unit, err := GetSimpleText(a.reader, promptWithDefault("Unit", p.Unit), os.Stdout)
	if err != nil {
		return p, err
	}
	if unit != "" {
		p.Unit = unit
	}
	if p.Unit == "" {
		p.Unit = "item"
	}

	return p, nil
}

func promptWithDefault(label, value string) string {
	if value == "" {
		return label
	}
	return fmt.Sprintf("%s [%s]", label, value)
}

// Add performs manual item entry.
func (a *App) Add(ctx context.Context) error {
	params, err := a.promptItemFields(ctx, services.AddParams{})
	if err != nil {
		return err
	}

	added, err := a.items.Add(ctx, params)
	if err != nil {
		return err
	}
	fmt.Printf("Added %q to the restock list.\n", added.Name)
	return nil
}

// Scan resolves a barcode (known-products cache first, then the catalog
// collaborator) and confirms the result. When identification fails the
// flow degrades to manual entry with the barcode attached.
func (a *App) Scan(ctx context.Context) error {
	barcode, err := GetSimpleText(a.reader, "Barcode", os.Stdout)
	if err != nil {
		return err
	}
	if barcode == "" {
		return errors.New("barcode is required")
	}

	defaults := services.AddParams{Barcode: barcode}
	result, err := a.items.Scan(ctx, barcode)
	if err != nil {
		fmt.Println("Barcode not recognized. Add the item manually.")
	} else {
		defaults.Name = result.ProductName
		defaults.Description = result.Description
		defaults.Category = result.Category
		defaults.Unit = result.QuantityUnit
		defaults.ImageURL = result.ImageURL
	}

	params, err := a.promptItemFields(ctx, defaults)
	if err != nil {
		return err
	}

	added, err := a.items.Add(ctx, params)
	if err != nil {
		return err
	}
	fmt.Printf("Added %q to the restock list.\n", added.Name)
	return nil
}

func (a *App) pickFromListing(prompt string) (models.Item, error) {
	if len(a.lastListing) == 0 {
		return models.Item{}, errors.New("nothing listed; run 'list' or 'history' first")
	}
	n, err := GetIndex(a.reader, prompt, len(a.lastListing), os.Stdout)
	if err != nil {
		return models.Item{}, err
	}
	return a.lastListing[n-1], nil
}

// Buy marks a listed item as bought.
func (a *App) Buy(ctx context.Context) error {
	if err := a.List(ctx); err != nil {
		return err
	}
	item, err := a.pickFromListing("Which item did you buy?")
	if err != nil {
		return err
	}
	if err := a.items.Restock(ctx, item.ID); err != nil {
		return err
	}
	fmt.Printf("%q moved to history.\n", item.Name)
	return nil
}

// Undo puts a history item back on the restock list.
func (a *App) Undo(ctx context.Context) error {
	if err := a.History(ctx); err != nil {
		return err
	}
	item, err := a.pickFromListing("Which item goes back on the list?")
	if err != nil {
		return err
	}
	if err := a.items.Unrestock(ctx, item.ID); err != nil {
		return err
	}
	fmt.Printf("%q is back on the restock list.\n", item.Name)
	return nil
}

// Edit updates fields of a listed item. Empty input keeps the old value.
// Image URLs come from the capture and catalog collaborators, so there is
// no prompt for one.
func (a *App) Edit(ctx context.Context) error {
	item, err := a.pickFromListing("Which item to edit?")
	if err != nil {
		return err
	}

	params, err := a.promptItemFields(ctx, services.AddParams{
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
	})
	if err != nil {
		return err
	}

	return a.items.Edit(ctx, item.ID, services.ItemChanges{
		Name:        &params.Name,
		Description: &params.Description,
		Category:    &params.Category,
		Quantity:    &params.Quantity,
		Unit:        &params.Unit,
	})
}

// Remove deletes a listed item.
func (a *App) Remove(ctx context.Context) error {
	item, err := a.pickFromListing("Which item to delete?")
	if err != nil {
		return err
	}
	if err := a.items.Delete(ctx, item.ID); err != nil {
		return err
	}
	fmt.Printf("%q deleted.\n", item.Name)
	return nil
}

// Search filters the restock list by a name substring and remembers the
// matches for numeric selection.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: search <term>")
	}
	term := strings.Join(args, " ")
	items := a.items.List(ctx, models.StatusActive, term)
	a.lastListing = items
	a.printItems(items)
	return nil
}

// Categories lists or mutates the category list.
func (a *App) Categories(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println(strings.Join(a.items.Categories(ctx), ", "))
		return nil
	}
	if len(args) < 2 {
		return errors.New("usage: cats [add|rm] <name>")
	}

	name := strings.Join(args[1:], " ")
	switch args[0] {
	case "add":
		return a.items.AddCategory(ctx, name)
	case "rm":
		return a.items.RemoveCategory(ctx, name)
	default:
		return errors.New("usage: cats [add|rm] <name>")
	}
}

// Code shows, sets or clears the sync code.
func (a *App) Code(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if a.store.SyncCode(ctx) == "" {
			fmt.Println("No sync code configured; this device is local-only.")
		} else {
			fmt.Println("A sync code is configured.")
		}
		return nil
	}

	switch args[0] {
	case "set":
		code, err := GetSecret("Sync code", os.Stdout)
		if err != nil {
			return err
		}
		if err := a.items.SetSyncCode(ctx, code); err != nil {
			return err
		}
		fmt.Println("Sync code saved; first sync scheduled.")
		return nil
	case "clear":
		if err := a.items.SetSyncCode(ctx, ""); err != nil {
			return err
		}
		fmt.Println("Sync code cleared.")
		return nil
	default:
		return errors.New("usage: code [set|clear]")
	}
}

// Refresh requests an immediate sync attempt (the pull-to-refresh analog).
func (a *App) Refresh(ctx context.Context) error {
	if a.store.SyncCode(ctx) == "" {
		return errors.New("no sync code configured")
	}
	a.orch.Notify()
	fmt.Println("Sync requested.")
	return nil
}
