package main

import "testing"

func TestInitItemsFollowsMapQuotas(t *testing.T) {
	h := newTestGame(t, nil)
	mc := &h.g.currentMap().Config
	mc.HealthItems, mc.MgunItems, mc.LauncherItems = 2, 3, 1
	h.g.initItems()

	if len(h.g.items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(h.g.items))
	}
	counts := map[byte]int{}
	for i, it := range h.g.items {
		if int(it.ID) != i+1 {
			t.Errorf("item %d has id %d", i, it.ID)
		}
		if h.g.grid().IsBlocked(it.X, it.Y) {
			t.Errorf("item %d placed inside a wall", it.ID)
		}
		counts[it.Type]++
	}
	if counts[ItemHealth] != 2 || counts[ItemAmmo] != 3 || counts[ItemLauncher] != 1 {
		t.Errorf("unexpected item mix %v", counts)
	}
}

func TestZombieModeItems(t *testing.T) {
	h := newTestGame(t, func(c *Config) { c.GameMode = ModeZombie })
	h.g.initItems()
	if len(h.g.items) != 120 {
		t.Errorf("expected 120 zombie mode items, got %d", len(h.g.items))
	}
}

func TestInitItemsCapsAtMax(t *testing.T) {
	h := newTestGame(t, nil)
	h.g.currentMap().Config.HealthItems = maxItems + 20
	h.g.initItems()
	if len(h.g.items) != maxItems {
		t.Errorf("expected %d items, got %d", maxItems, len(h.g.items))
	}
}

func TestPickItemHealsAndMoves(t *testing.T) {
	h := newTestGame(t, nil)
	h.g.currentMap().Config.HealthItems = 1
	h.g.initItems()
	alice := h.login(addrA, 1, "alice")
	bob := h.login(addrB, 2, "bob")
	h.g.outbox.Clear(bob.ID)
	alice.Health = 70

	h.g.pickItem(alice, 1)
	if alice.Health != PlayerMaxHealth {
		t.Errorf("health should cap at %d, got %v", PlayerMaxHealth, alice.Health)
	}
	got := pendingOf[ItemEvent](h.g, bob.ID)
	if len(got) != 1 || got[0].ID != 1 || got[0].Type != ItemHealth {
		t.Errorf("expected the item's new spot broadcast, got %+v", got)
	}

	alice.Health = 20
	h.g.pickItem(alice, 1)
	if alice.Health != 70 {
		t.Errorf("expected 70 health, got %v", alice.Health)
	}
}

func TestPickUnknownItemIsIgnored(t *testing.T) {
	h := newTestGame(t, nil)
	alice := h.login(addrA, 1, "alice")
	alice.Health = 10

	h.g.pickItem(alice, 5)
	if alice.Health != 10 {
		t.Errorf("unknown item changed health to %v", alice.Health)
	}
}

func TestPickItemFromPacket(t *testing.T) {
	h := newTestGame(t, nil)
	h.g.currentMap().Config.HealthItems = 1
	h.g.initItems()
	alice := h.login(addrA, 1, "alice")
	alice.Health = 40

	h.deliver(addrA, playerPacket(1, byte(alice.ID), int16(alice.X), int16(alice.Y), 0, WeaponPistol, 1))
	if alice.Health != 90 {
		t.Errorf("expected 90 health after the pickup, got %v", alice.Health)
	}
	if _, ok := findRecord(decodeReply(t, h.lastSent().Data), NetItem); !ok {
		t.Error("the picker should see the item move")
	}
}
