// SPDX-License-Identifier: GPL-2.0-or-later

package stat

const (
	Health = iota
	Frags
	Weapon
	Ammo
	Armor
	WeaponFrame
	Shells
	Nails
	Rockets
	Cells
	ActiveWeapon
	TotalSecrets
	TotalMonsters
	Secrets
	Monsters
)

const (
	// stats below this index fit the svc_updatestat message of
	// vanilla clients, the others are sent as "//st" stufftext
	MaxClBase = 32
	MaxCl     = 256
)
