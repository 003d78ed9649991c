package world

import (
	"errors"
	"fmt"
	"strings"
)

// Economy failures. Handlers report these as unsuccessful results;
// they never leave a partial mutation behind.
var (
	ErrUnknownItem       = errors.New("no such item")
	ErrBadQuantity       = errors.New("quantity must be positive")
	ErrInsufficientGold  = errors.New("not enough gold")
	ErrInsufficientItems = errors.New("not enough items")
)

// Buy purchases qty of an item from the catalog. Gold and inventory
// move together or not at all. Returns the total cost.
func (s *State) Buy(itemID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadQuantity, qty)
	}
	item, ok := s.Tavern.Catalog[itemID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}

	cost := item.Price * qty
	if s.Player.Gold < cost {
		return 0, fmt.Errorf("%w: %d gold needed, %d on hand", ErrInsufficientGold, cost, s.Player.Gold)
	}

	s.Player.Gold -= cost
	s.Player.Inventory[itemID] += qty
	return cost, nil
}

// Sell sells qty of an item back to the house at the catalog's sell
// price. Atomic like Buy. Returns the total proceeds.
func (s *State) Sell(itemID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadQuantity, qty)
	}
	item, ok := s.Tavern.Catalog[itemID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	if s.Player.Inventory[itemID] < qty {
		return 0, fmt.Errorf("%w: %d of %q asked, %d carried", ErrInsufficientItems, qty, itemID, s.Player.Inventory[itemID])
	}

	proceeds := item.SellPrice * qty
	s.Player.Inventory[itemID] -= qty
	if s.Player.Inventory[itemID] == 0 {
		delete(s.Player.Inventory, itemID)
	}
	s.Player.Gold += proceeds
	return proceeds, nil
}

// ResolveItem matches a player-supplied item reference (id or display
// name) against the catalog.
func (s *State) ResolveItem(ref string) (string, bool) {
	if _, ok := s.Tavern.Catalog[ref]; ok {
		return ref, true
	}
	for id, item := range s.Tavern.Catalog {
		if strings.EqualFold(item.Name, ref) {
			return id, true
		}
	}
	return "", false
}
