package rover

// CommandVerb is the byte after the three motor-effort bytes of an
// outbound frame (third from the end, before arg and checksum): it selects
// what the controller should do with the trailing arg byte.
type CommandVerb byte

// Command verbs understood by the controller firmware.
const (
	VerbNOP               CommandVerb = 0
	VerbReloadSettings     CommandVerb = 1
	VerbCommitSettings     CommandVerb = 2
	// 3..18 (excluding 10, which VerbGetData occupies) are parameterized
	// settings verbs — see the settings registry in registry.go.
	VerbGetData            CommandVerb = 10
	VerbSetFanSpeed        CommandVerb = 20
	VerbRestart            CommandVerb = 230
	VerbClearSystemFault   CommandVerb = 232
	VerbSetDriveMode       CommandVerb = 240
	VerbFlipperCalibrate   CommandVerb = 250
)

// Settings verbs, each taking a single arg byte persisted to flash once
// CommitSettings is issued.
const (
	VerbSetDriveType              CommandVerb = 3
	VerbSetPIDP                   CommandVerb = 4
	VerbSetPIDI                   CommandVerb = 5
	VerbSetPIDD                   CommandVerb = 6
	VerbSetEncoderInterval        CommandVerb = 7
	VerbSetOvercurrentLeft        CommandVerb = 8
	VerbSetOvercurrentRight       CommandVerb = 9
	VerbSetOvercurrentFlipper     CommandVerb = 11
	VerbSetFanAuto                CommandVerb = 12
	VerbSetFlipperSpeedLimit      CommandVerb = 13
	VerbSetWheelEncoderPoleCount  CommandVerb = 14
	VerbSetBrakeOnZero            CommandVerb = 15
	VerbSetLowBatteryCutoff       CommandVerb = 16
	VerbSetSoundEnable            CommandVerb = 17
	VerbSetOvertempCutoff         CommandVerb = 18
)

// restartArgReboot/restartArgBootloader are the arg values accepted by
// VerbRestart.
const (
	restartArgReboot     byte = 0
	restartArgBootloader byte = 1
)

// restartAttempts is the number of times Restart re-sends its frame to
// cover lost packets around a reboot.
const restartAttempts = 3
