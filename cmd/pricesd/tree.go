// tree.go: The price catalog configuration tree
//
// A small shop catalog: priced goods under /food and /drinks, plus a
// fixed pool of orders, each holding two item slots. Prices are
// zero-padded decimal strings; orders alias one shared byte buffer so
// array items address their slices through the registry's offset scheme.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"log"

	"github.com/confkit/conftree"
)

// Identifier layout of the catalog tree.
const (
	sidFood       = conftree.SID(0x1000)
	sidFoodUpper  = conftree.SID(0x100f)
	sidBread      = conftree.SID(0x1001)
	sidBreadUpper = conftree.SID(0x1003)
	sidWhite      = conftree.SID(0x1002)
	sidWholeGrain = conftree.SID(0x1003)
	sidCake       = conftree.SID(0x1004)
	sidCakeUpper  = conftree.SID(0x1006)
	sidCheesecake = conftree.SID(0x1005)
	sidDonut      = conftree.SID(0x1006)

	sidDrinks      = conftree.SID(0x2000)
	sidDrinksUpper = conftree.SID(0x2003)
	sidCoffee      = conftree.SID(0x2001)
	sidTea         = conftree.SID(0x2002)
	sidCocoa       = conftree.SID(0x2003)

	sidOrders    = conftree.SID(0x3000)
	ordersStride = conftree.SID(4)
	orderCount   = 3
	orderSize    = itemsPerOrder * itemSize

	sidItems      = conftree.SID(0x3002)
	itemsPerOrder = 2
	itemSize      = 12
)

const priceSize = 6

// priceOps is DefaultOps plus validation and activation for price
// strings.
type priceOps struct {
	conftree.DefaultOps
}

// Verify rejects values that are not zero-padded decimal strings.
func (priceOps) Verify(h *conftree.Handler, k conftree.OpKey) error {
	raw := h.Value(k)
	end := 0
	for end < len(raw) && raw[end] != 0 {
		end++
	}
	if end == 0 {
		return fmt.Errorf("empty price at %s", k.Path)
	}
	dots := 0
	for _, c := range raw[:end] {
		switch {
		case c >= '0' && c <= '9':
		case c == '.':
			dots++
		default:
			return fmt.Errorf("malformed price %q at %s", raw[:end], k.Path)
		}
	}
	if dots > 1 || raw[0] == '.' || raw[end-1] == '.' {
		return fmt.Errorf("malformed price %q at %s", raw[:end], k.Path)
	}
	return nil
}

// Apply announces the now-active price.
func (priceOps) Apply(h *conftree.Handler, k conftree.OpKey) error {
	raw := h.Value(k)
	end := 0
	for end < len(raw) && raw[end] != 0 {
		end++
	}
	log.Printf("pricesd: %s now costs %s", k.Path, raw[:end])
	return nil
}

// memOps is in-memory set/get without any persistence capability.
type memOps struct{}

func (memOps) Set(h *conftree.Handler, k conftree.OpKey, val []byte) (int, error) {
	return conftree.DefaultOps{}.Set(h, k, val)
}

func (memOps) Get(h *conftree.Handler, k conftree.OpKey, dst []byte) (int, error) {
	return conftree.DefaultOps{}.Get(h, k, dst)
}

// catalog bundles the built registry with the leaves the daemon seeds.
type catalog struct {
	reg    *conftree.Registry
	prices map[conftree.SID]string
}

// buildCatalog registers the full tree on a fresh registry.
func buildCatalog(opts ...conftree.Option) (*catalog, error) {
	r := conftree.New(opts...)

	food := conftree.NewNode("food", sidFood, sidFoodUpper)
	bread := conftree.NewNode("bread", sidBread, sidBreadUpper)
	cake := conftree.NewNode("cake", sidCake, sidCakeUpper)
	drinks := conftree.NewNode("drinks", sidDrinks, sidDrinksUpper)

	ordersData := make([]byte, orderCount*orderSize)
	orders := conftree.NewArrayHandler("orders", sidOrders, ordersStride,
		orderCount, orderSize, conftree.DefaultOps{}, ordersData)
	// items alias the orders buffer; they are reachable in memory but the
	// orders records already persist their bytes, so items carry no Porter.
	items := conftree.NewArrayHandler("items", sidItems, 1,
		itemsPerOrder, itemSize, memOps{}, ordersData)

	type reg struct {
		parent conftree.Registrant
		child  conftree.Registrant
	}
	price := func(name string, sid conftree.SID) *conftree.Handler {
		return conftree.NewHandler(name, sid, priceOps{}, make([]byte, priceSize))
	}
	white := price("white", sidWhite)
	wholeGrain := price("whole_grain", sidWholeGrain)
	cheesecake := price("cheesecake", sidCheesecake)
	donut := price("donut", sidDonut)
	coffee := price("coffee", sidCoffee)
	tea := price("tea", sidTea)
	cocoa := price("cocoa", sidCocoa)

	regs := []reg{
		{r.Root(), food},
		{food, bread},
		{bread, white},
		{bread, wholeGrain},
		{food, cake},
		{cake, cheesecake},
		{cake, donut},
		{r.Root(), drinks},
		{drinks, coffee},
		{drinks, tea},
		{drinks, cocoa},
		{r.Root(), orders},
		{orders, items},
	}
	for _, rg := range regs {
		if err := r.Register(rg.parent, rg.child); err != nil {
			return nil, err
		}
	}

	return &catalog{
		reg: r,
		prices: map[conftree.SID]string{
			sidWhite:      "2.00",
			sidWholeGrain: "2.50",
			sidCheesecake: "3.99",
			sidDonut:      "0.99",
			sidCoffee:     "1.50",
			sidTea:        "1.20",
			sidCocoa:      "1.80",
		},
	}, nil
}

// seed writes the default prices into memory.
func (c *catalog) seed() error {
	buf := make([]byte, priceSize)
	for sid, p := range c.prices {
		for i := range buf {
			buf[i] = 0
		}
		copy(buf, p)
		if _, err := c.reg.Set(sid, buf); err != nil {
			return err
		}
	}
	return nil
}
