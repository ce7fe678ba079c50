// SPDX-License-Identifier: GPL-2.0-or-later

package server

const (
	//
	// server to client
	//
	Bad        = 0
	Nop        = 1
	Disconnect = 2
	// [byte] [long]
	UpdateStat = 3
	// [long] server version
	Version = 4
	// [short] entity number
	SetView = 5
	// <see code>
	Sound = 6
	// [float] server time
	Time = 7
	// [string] null terminated string
	Print = 8
	// [string] stuffed into client's console buffer
	// the string should be \n terminated
	StuffText = 9
	// [angle3] set the view angle to this absolute value
	SetAngle = 10
	// [long] version
	// [string] signon string
	// [string]..[0]model cache
	// [string]...[0]sounds cache
	ServerInfo = 11
	// [byte] [string]
	LightStyle = 12
	// [byte] [string]
	UpdateName = 13
	// [byte] [short]
	UpdateFrags = 14
	// <shortbits + data>
	ClientData = 15
	// <see code>
	StopSound = 16
	// [byte] [byte]
	UpdateColors = 17
	// [vec3] <variable>
	Particle    = 18
	Damage      = 19
	SpawnStatic = 20
	// svc_spawnbinary		=21
	SpawnBaseline = 22
	TempEntity    = 23
	// [byte] on / off
	SetPause = 24
	// [byte]  used for the signon sequence
	SignonNum = 25
	// [string] to put in center of the screen
	Centerprint   = 26
	KilledMonster = 27
	FoundSecret   = 28
	// [coord3] [byte] samp [byte] vol [byte] aten
	SpawnStaticSound = 29
	// [string] music
	Intermission = 30
	// [string] music [string] text
	Finale = 31
	// [byte] track [byte] looptrack
	CDTrack    = 32
	SellScreen = 33
	Cutscene   = 34

	// johnfitz -- PROTOCOL_FITZQUAKE -- new server messages

	// [string] name
	Skybox = 37
	BF     = 40
	// [byte] density [byte] red [byte] green [byte] blue [float] time
	Fog = 41
	// support for large modelindex, large framenum, alpha, using flags
	SpawnBaseline2 = 42
	// support for large modelindex, large framenum, alpha, using flags
	SpawnStatic2 = 43
	// [coord3] [short] samp [byte] vol [byte] aten
	SpawnStaticSound2 = 44

	// johnfitz
)

const (
	// sound message field mask
	SoundVolume      = 1 << 0 // a byte
	SoundAttenuation = 1 << 1 // a byte
	SoundLargeEntity = 1 << 3 // a short + byte (instead of just a short)
	SoundLargeSound  = 1 << 4 // a short soundindex (instead of a byte one)

	DefaultSoundVolume      = 255
	DefaultSoundAttenuation = 1.0
)

const (
	// entity update bits, the first byte of a fast update has U_SIGNAL set
	U_MOREBITS   = 1 << 0
	U_ORIGIN1    = 1 << 1
	U_ORIGIN2    = 1 << 2
	U_ORIGIN3    = 1 << 3
	U_ANGLE2     = 1 << 4
	U_STEP       = 1 << 5
	U_FRAME      = 1 << 6
	U_SIGNAL     = 1 << 7
	U_ANGLE1     = 1 << 8
	U_ANGLE3     = 1 << 9
	U_MODEL      = 1 << 10
	U_COLORMAP   = 1 << 11
	U_SKIN       = 1 << 12
	U_EFFECTS    = 1 << 13
	U_LONGENTITY = 1 << 14
	// nehahra alpha, only with protocol NetQuake
	U_TRANS = 1 << 15

	// johnfitz -- PROTOCOL_FITZQUAKE -- new bits
	U_EXTEND1    = 1 << 15
	U_ALPHA      = 1 << 16
	U_FRAME2     = 1 << 17
	U_MODEL2     = 1 << 18
	U_LERPFINISH = 1 << 19
	U_SCALE      = 1 << 20
	U_EXTEND2    = 1 << 23
)

var names = map[byte]string{
	Bad: "svc_bad", Nop: "svc_nop", Disconnect: "svc_disconnect",
	UpdateStat: "svc_updatestat", Version: "svc_version", SetView: "svc_setview",
	Sound: "svc_sound", Time: "svc_time", Print: "svc_print",
	StuffText: "svc_stufftext", SetAngle: "svc_setangle",
	ServerInfo: "svc_serverinfo", LightStyle: "svc_lightstyle",
	UpdateName: "svc_updatename", UpdateFrags: "svc_updatefrags",
	ClientData: "svc_clientdata", StopSound: "svc_stopsound",
	UpdateColors: "svc_updatecolors", Particle: "svc_particle",
	Damage: "svc_damage", SpawnStatic: "svc_spawnstatic",
	SpawnBaseline: "svc_spawnbaseline", TempEntity: "svc_temp_entity",
	SetPause: "svc_setpause", SignonNum: "svc_signonnum",
	Centerprint: "svc_centerprint", KilledMonster: "svc_killedmonster",
	FoundSecret: "svc_foundsecret", SpawnStaticSound: "svc_spawnstaticsound",
	Intermission: "svc_intermission", Finale: "svc_finale",
	CDTrack: "svc_cdtrack", SellScreen: "svc_sellscreen",
	Cutscene: "svc_cutscene", Skybox: "svc_skybox", BF: "svc_bf",
	Fog: "svc_fog", SpawnBaseline2: "svc_spawnbaseline2",
	SpawnStatic2: "svc_spawnstatic2", SpawnStaticSound2: "svc_spawnstaticsound2",
}

// Name returns the protocol name of a server command, used by dump tools.
func Name(c byte) string {
	if n, ok := names[c]; ok {
		return n
	}
	return "svc_unknown"
}
