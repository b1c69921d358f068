package one

import "fmt"

// VMState is the top-level state of a VM.
type VMState int

// VM states as numbered by the backend.
const (
	VMStateInit           VMState = 0
	VMStatePending        VMState = 1
	VMStateHold           VMState = 2
	VMStateActive         VMState = 3
	VMStateStopped        VMState = 4
	VMStateSuspended      VMState = 5
	VMStateDone           VMState = 6
	VMStateFailed         VMState = 7
	VMStatePoweroff       VMState = 8
	VMStateUndeployed     VMState = 9
	VMStateCloning        VMState = 10
	VMStateCloningFailure VMState = 11
)

var vmStateNames = map[VMState]string{
	VMStateInit:           "INIT",
	VMStatePending:        "PENDING",
	VMStateHold:           "HOLD",
	VMStateActive:         "ACTIVE",
	VMStateStopped:        "STOPPED",
	VMStateSuspended:      "SUSPENDED",
	VMStateDone:           "DONE",
	VMStateFailed:         "FAILED",
	VMStatePoweroff:       "POWEROFF",
	VMStateUndeployed:     "UNDEPLOYED",
	VMStateCloning:        "CLONING",
	VMStateCloningFailure: "CLONING_FAILURE",
}

// String returns the backend's name for the state.
func (s VMState) String() string {
	if name, ok := vmStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// IsFailure reports whether the state is one of the closed set of failure states.
func (s VMState) IsFailure() bool {
	return s == VMStateFailed || s == VMStateCloningFailure
}

// LCMState is the life-cycle sub-state of an ACTIVE VM.
type LCMState int

// LCM states as numbered by the backend.
const (
	LCMInit                         LCMState = 0
	LCMProlog                       LCMState = 1
	LCMBoot                         LCMState = 2
	LCMRunning                      LCMState = 3
	LCMMigrate                      LCMState = 4
	LCMSaveStop                     LCMState = 5
	LCMSaveSuspend                  LCMState = 6
	LCMSaveMigrate                  LCMState = 7
	LCMPrologMigrate                LCMState = 8
	LCMPrologResume                 LCMState = 9
	LCMEpilogStop                   LCMState = 10
	LCMEpilog                       LCMState = 11
	LCMShutdown                     LCMState = 12
	LCMFailure                      LCMState = 14
	LCMCleanupResubmit              LCMState = 15
	LCMUnknown                      LCMState = 16
	LCMHotplug                      LCMState = 17
	LCMShutdownPoweroff             LCMState = 18
	LCMBootUnknown                  LCMState = 19
	LCMBootPoweroff                 LCMState = 20
	LCMBootSuspended                LCMState = 21
	LCMBootStopped                  LCMState = 22
	LCMCleanupDelete                LCMState = 23
	LCMBootMigrate                  LCMState = 35
	LCMBootFailure                  LCMState = 36
	LCMBootMigrateFailure           LCMState = 37
	LCMPrologMigrateFailure         LCMState = 38
	LCMPrologFailure                LCMState = 39
	LCMEpilogFailure                LCMState = 40
	LCMEpilogStopFailure            LCMState = 41
	LCMEpilogUndeployFailure        LCMState = 42
	LCMPrologMigratePoweroffFailure LCMState = 44
	LCMPrologMigrateSuspendFailure  LCMState = 46
	LCMBootUndeployFailure          LCMState = 47
	LCMBootStoppedFailure           LCMState = 48
	LCMPrologResumeFailure          LCMState = 49
	LCMPrologUndeployFailure        LCMState = 50
)

var lcmStateNames = map[LCMState]string{
	LCMInit:                         "LCM_INIT",
	LCMProlog:                       "PROLOG",
	LCMBoot:                         "BOOT",
	LCMRunning:                      "RUNNING",
	LCMMigrate:                      "MIGRATE",
	LCMSaveStop:                     "SAVE_STOP",
	LCMSaveSuspend:                  "SAVE_SUSPEND",
	LCMSaveMigrate:                  "SAVE_MIGRATE",
	LCMPrologMigrate:                "PROLOG_MIGRATE",
	LCMPrologResume:                 "PROLOG_RESUME",
	LCMEpilogStop:                   "EPILOG_STOP",
	LCMEpilog:                       "EPILOG",
	LCMShutdown:                     "SHUTDOWN",
	LCMFailure:                      "FAILURE",
	LCMCleanupResubmit:              "CLEANUP_RESUBMIT",
	LCMUnknown:                      "UNKNOWN",
	LCMHotplug:                      "HOTPLUG",
	LCMShutdownPoweroff:             "SHUTDOWN_POWEROFF",
	LCMBootUnknown:                  "BOOT_UNKNOWN",
	LCMBootPoweroff:                 "BOOT_POWEROFF",
	LCMBootSuspended:                "BOOT_SUSPENDED",
	LCMBootStopped:                  "BOOT_STOPPED",
	LCMCleanupDelete:                "CLEANUP_DELETE",
	LCMBootMigrate:                  "BOOT_MIGRATE",
	LCMBootFailure:                  "BOOT_FAILURE",
	LCMBootMigrateFailure:           "BOOT_MIGRATE_FAILURE",
	LCMPrologMigrateFailure:         "PROLOG_MIGRATE_FAILURE",
	LCMPrologFailure:                "PROLOG_FAILURE",
	LCMEpilogFailure:                "EPILOG_FAILURE",
	LCMEpilogStopFailure:            "EPILOG_STOP_FAILURE",
	LCMEpilogUndeployFailure:        "EPILOG_UNDEPLOY_FAILURE",
	LCMPrologMigratePoweroffFailure: "PROLOG_MIGRATE_POWEROFF_FAILURE",
	LCMPrologMigrateSuspendFailure:  "PROLOG_MIGRATE_SUSPEND_FAILURE",
	LCMBootUndeployFailure:          "BOOT_UNDEPLOY_FAILURE",
	LCMBootStoppedFailure:           "BOOT_STOPPED_FAILURE",
	LCMPrologResumeFailure:          "PROLOG_RESUME_FAILURE",
	LCMPrologUndeployFailure:        "PROLOG_UNDEPLOY_FAILURE",
}

// String returns the backend's name for the LCM state.
func (s LCMState) String() string {
	if name, ok := lcmStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("LCM_STATE_%d", int(s))
}

var lcmFailureStates = map[LCMState]bool{
	LCMFailure:                      true,
	LCMBootFailure:                  true,
	LCMBootMigrateFailure:           true,
	LCMPrologMigrateFailure:         true,
	LCMPrologFailure:                true,
	LCMEpilogFailure:                true,
	LCMEpilogStopFailure:            true,
	LCMEpilogUndeployFailure:        true,
	LCMPrologMigratePoweroffFailure: true,
	LCMPrologMigrateSuspendFailure:  true,
	LCMBootUndeployFailure:          true,
	LCMBootStoppedFailure:           true,
	LCMPrologResumeFailure:          true,
	LCMPrologUndeployFailure:        true,
}

// IsFailure reports whether the LCM state is one of the closed set of failure states.
func (s LCMState) IsFailure() bool {
	return lcmFailureStates[s]
}

// IsRunning reports whether the VM is ACTIVE and RUNNING.
func (v VM) IsRunning() bool {
	return v.State == VMStateActive && v.LCMState == LCMRunning
}

// IsFailed reports whether the VM is in a recognized failure state.
// The LCM state is only meaningful while the VM is ACTIVE.
func (v VM) IsFailed() bool {
	if v.State.IsFailure() {
		return true
	}
	return v.State == VMStateActive && v.LCMState.IsFailure()
}

// StateString renders the combined state, e.g. "ACTIVE/BOOT".
func (v VM) StateString() string {
	if v.State == VMStateActive {
		return v.State.String() + "/" + v.LCMState.String()
	}
	return v.State.String()
}
