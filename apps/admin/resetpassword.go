package main

import "context"

func (cli *commandLine) resetPassword(studentID, pwd string) error {
	return cli.studentSvc.ResetPassword(context.Background(), studentID, pwd)
}
