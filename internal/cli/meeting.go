package cli

import (
	"github.com/spf13/cobra"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

var meetingCmd = &cobra.Command{
	Use:     "meeting",
	Aliases: []string{"m"},
	Short:   "Create or join an open video meeting",
}

var meetingCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a meeting room and wait for others to join",
	Long: `Create a meeting room with a fresh share code.

Examples:
  hiresafe meeting create
  hiresafe meeting create --name "Xavier"
  hiresafe meeting create --domain custom.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createRoom(signaling.RoomMeeting)
	},
}

var meetingJoinCmd = &cobra.Command{
	Use:   "join CODE",
	Short: "Join an existing meeting by its share code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return joinExisting(signaling.RoomMeeting, args[0])
	},
}

func init() {
	meetingCmd.AddCommand(meetingCreateCmd)
	meetingCmd.AddCommand(meetingJoinCmd)
	rootCmd.AddCommand(meetingCmd)
}
