package main

import "log"

const maxItems = 255

// Item is a pickup lying on the map
type Item struct {
	ID   byte
	Type byte
	X, Y float64
}

func (it *Item) event() ItemEvent {
	return ItemEvent{ID: it.ID, Type: it.Type, X: it.X, Y: it.Y}
}

type itemQuota struct {
	Type  byte
	Count int
}

// itemQuotas returns how many items of each type the current map gets
func (g *Game) itemQuotas() []itemQuota {
	if g.cfg.GameMode == ModeZombie {
		return []itemQuota{{ItemHealth, 20}, {ItemAmmo, 50}, {ItemShotgun, 50}}
	}
	mc := g.currentMap().Config
	return []itemQuota{
		{ItemHealth, mc.HealthItems},
		{ItemAmmo, mc.MgunItems},
		{ItemRocket, mc.BazookaItems},
		{ItemShotgun, mc.ShotgunItems},
		{ItemLauncher, mc.LauncherItems},
		{ItemFuel, mc.ChainsawItems},
	}
}

// initItems places every item of the current map at a random free spot
func (g *Game) initItems() {
	g.items = g.items[:0]
	for _, q := range g.itemQuotas() {
		for i := 0; i < q.Count; i++ {
			if len(g.items) >= maxItems {
				log.Printf("items: %s asks for more than %d items", g.currentMap().Name, maxItems)
				return
			}
			x, y := g.findSpot()
			g.items = append(g.items, &Item{ID: byte(len(g.items) + 1), Type: q.Type, X: x, Y: y})
		}
	}
}

// pickItem handles p picking up item id: the item moves to a new spot and
// health items heal
func (g *Game) pickItem(p *Player, id byte) {
	if id == 0 || int(id) > len(g.items) {
		return
	}
	it := g.items[id-1]
	it.X, it.Y = g.findSpot()
	g.queueAll(it.event(), 0)
	if it.Type == ItemHealth {
		p.Health = min(PlayerMaxHealth, p.Health+healthPickup)
	}
}
