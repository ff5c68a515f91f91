package main

import (
	"context"
	"fmt"
)

// sendReminders runs the daily reminder job on demand.
func (cli *commandLine) sendReminders() error {
	res, err := cli.reminderJob.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%d user(s) notified, %d failed\n", res.UsersNotified, res.UsersFailed)
	for _, f := range res.Failures {
		fmt.Printf("  failed: %s <%s>: %s\n", f.Username, f.Email, f.Reason)
	}
	return nil
}
