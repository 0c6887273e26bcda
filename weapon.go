package main

// Weapon ids as carried on the wire
const (
	WeaponPistol     = 1
	WeaponMachinegun = 2
	WeaponBazooka    = 3
	WeaponShotgun    = 4
	WeaponLauncher   = 5
	WeaponChainsaw   = 6
)

const (
	launcherFuse     = 1000 // ms until a launcher grenade explodes on its own
	directHitRadius  = 20.0 // bullet-to-player distance that counts as a hit
	hitSampleStep    = 5.0  // max distance between sub-sampled hit points
	maxBacktrackStep = 50   // unit steps a new bullet may walk back out of a wall
)

// Weapon holds the constants for one weapon type
type Weapon struct {
	ID          int
	Name        string
	ReloadTime  int     // ms between shots
	BulletSpeed float64 // units/s
	BulletForth float64 // muzzle offset forward from the shooter
	BulletYaw   float64 // muzzle offset sideways from the shooter
	Damage      float64
	DamageRange float64 // blast radius, 0 when the weapon does not explode
	Spread      float64 // degrees
	SafeRange   float64 // bots back off when closer than this
	ShootRange  float64 // bots fire when closer than this
	Weight      float64 // movement penalty, 100 is neutral
	MaxAmmo     int
	PickCount   int // ammo gained from one pickup
	Pellets     int // bullets per trigger pull
}

var weapons = [...]Weapon{
	{ID: WeaponPistol, Name: "pistol", ReloadTime: 250, BulletSpeed: 1200, BulletForth: 33, BulletYaw: 10,
		Damage: 19, SafeRange: 100, ShootRange: 500, Weight: 100, Pellets: 1},
	{ID: WeaponMachinegun, Name: "machinegun", ReloadTime: 100, BulletSpeed: 1000, BulletForth: 29, BulletYaw: 8,
		Damage: 17, Spread: 2, SafeRange: 200, ShootRange: 500, Weight: 100, MaxAmmo: 150, PickCount: 50, Pellets: 1},
	{ID: WeaponBazooka, Name: "bazooka", ReloadTime: 1500, BulletSpeed: 900, BulletForth: 30, BulletYaw: 8,
		Damage: 150, DamageRange: 250, SafeRange: 300, ShootRange: 500, Weight: 115, MaxAmmo: 10, PickCount: 5, Pellets: 1},
	{ID: WeaponShotgun, Name: "shotgun", ReloadTime: 1000, BulletSpeed: 900, BulletForth: 33, BulletYaw: 10,
		Damage: 20, Spread: 15, SafeRange: 150, ShootRange: 300, Weight: 100, MaxAmmo: 20, PickCount: 10, Pellets: 6},
	{ID: WeaponLauncher, Name: "launcher", ReloadTime: 1000, BulletSpeed: 400, BulletForth: 32, BulletYaw: 8,
		Damage: 200, DamageRange: 150, Spread: 5, SafeRange: 300, ShootRange: 400, Weight: 110, MaxAmmo: 6, PickCount: 2, Pellets: 2},
	{ID: WeaponChainsaw, Name: "chainsaw", ReloadTime: 100, BulletSpeed: 0, BulletForth: 45, BulletYaw: 9,
		Damage: 70, DamageRange: 60, SafeRange: 60, ShootRange: 150, Weight: 90, MaxAmmo: 100, PickCount: 50, Pellets: 1},
}

// WeaponByID looks up a weapon, reporting false for ids outside 1..6
func WeaponByID(id int) (*Weapon, bool) {
	if id < WeaponPistol || id > WeaponChainsaw {
		return nil, false
	}
	return &weapons[id-1], true
}

// ValidWeapon reports whether id names a weapon
func ValidWeapon(id int) bool {
	_, ok := WeaponByID(id)
	return ok
}

// weaponOrPistol never fails, falling back to the pistol for bad ids
func weaponOrPistol(id int) *Weapon {
	if w, ok := WeaponByID(id); ok {
		return w
	}
	return &weapons[0]
}
