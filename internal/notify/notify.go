// Package notify raises best-effort desktop notifications for finished
// release runs. Failures to reach the notification daemon are logged at
// debug level and otherwise ignored.
package notify

import (
	"fmt"

	"github.com/VIISON/scs-commander/internal/utils"
	"github.com/gen2brain/beeep"
)

const title = "scs-commander"

// Published reports a binary that passed the store review and went live.
func Published(plugin, version string) {
	send(fmt.Sprintf("%s %s is published in the store", plugin, version))
}

// AwaitingRelease reports a binary that was saved without a review request.
func AwaitingRelease(plugin, version string) {
	send(fmt.Sprintf("%s %s is uploaded, request the release when you are ready", plugin, version))
}

// Failed reports an aborted release run.
func Failed(plugin, version string, err error) {
	if alertErr := beeep.Alert(title, fmt.Sprintf("Releasing %s %s failed: %v", plugin, version, err), ""); alertErr != nil {
		utils.Log.Debugf("Desktop notification failed: %v", alertErr)
	}
}

func send(message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		utils.Log.Debugf("Desktop notification failed: %v", err)
	}
}
