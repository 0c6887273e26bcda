package main

// Outbox holds the queued events of every slot until that slot's next reply
type Outbox struct {
	queues [MaxSlots + 1][]Event
}

// Add queues an event for one slot
func (o *Outbox) Add(to int, ev Event) {
	if to < 1 || to > MaxSlots {
		return
	}
	o.queues[to] = append(o.queues[to], ev)
}

// Take returns and clears a slot's queue
func (o *Outbox) Take(id int) []Event {
	if id < 1 || id > MaxSlots {
		return nil
	}
	q := o.queues[id]
	o.queues[id] = nil
	return q
}

// Clear drops a slot's queue
func (o *Outbox) Clear(id int) {
	if id >= 1 && id <= MaxSlots {
		o.queues[id] = nil
	}
}

// Pending returns a slot's queue without clearing it
func (o *Outbox) Pending(id int) []Event {
	if id < 1 || id > MaxSlots {
		return nil
	}
	return o.queues[id]
}

// queueTo queues an event for one player
func (g *Game) queueTo(id int, ev Event) {
	g.outbox.Add(id, ev)
}

// queueAll queues an event for every connected human except one slot (0 for none)
func (g *Game) queueAll(ev Event, except int) {
	for _, p := range g.slots() {
		if p.Active && !p.Zombie && p.ID != except {
			g.outbox.Add(p.ID, ev)
		}
	}
}

// queueTeam queues an event for every connected human on a team
func (g *Game) queueTeam(team int, ev Event) {
	for _, p := range g.slots() {
		if p.Active && !p.Zombie && p.Team == team {
			g.outbox.Add(p.ID, ev)
		}
	}
}
