package cli

import (
	"github.com/spf13/cobra"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

var interviewCmd = &cobra.Command{
	Use:     "interview",
	Aliases: []string{"i"},
	Short:   "Create or join a two-person proctored interview",
	Long:    `Interview rooms are capped at two members: the creator becomes the interviewer, the second joiner the candidate. The room carries a shared code editor and the candidate side flags suspicious behavior to the interviewer.`,
}

var interviewCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an interview room as the interviewer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createRoom(signaling.RoomInterview)
	},
}

var interviewJoinCmd = &cobra.Command{
	Use:   "join CODE",
	Short: "Join an interview as the candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return joinExisting(signaling.RoomInterview, args[0])
	},
}

func init() {
	interviewCmd.AddCommand(interviewCreateCmd)
	interviewCmd.AddCommand(interviewJoinCmd)
	rootCmd.AddCommand(interviewCmd)
}
