package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/longlg88/wallyhub/core/board"
	"github.com/longlg88/wallyhub/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	boardSvc   *board.Service
	studentSvc *student.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createboard -title TITLE -owner TEACHER_ID      - create a new board")
	fmt.Println("  setactive -board BOARD_ID -active true|false    - open or close a board")
	fmt.Println("  resetpassword -student STUDENT_ID               - reset a student's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createBoardCmd := flag.NewFlagSet("createboard", flag.ExitOnError)
	createBoardTitle := createBoardCmd.String("title", "", "The board's title.")
	createBoardOwner := createBoardCmd.String("owner", "", "The owning teacher's id.")

	setActiveCmd := flag.NewFlagSet("setactive", flag.ExitOnError)
	setActiveBoard := setActiveCmd.String("board", "", "The board's id.")
	setActiveVal := setActiveCmd.Bool("active", true, "Whether the board accepts joins and uploads.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordStudent := resetPasswordCmd.String("student", "", "The student's id. The password will be prompted next.")

	switch args[1] {
	case "createboard":
		if err := createBoardCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createBoardTitle == "" || *createBoardOwner == "" {
			createBoardCmd.Usage()
			return errHelp
		}
		return cli.createBoard(*createBoardTitle, *createBoardOwner)
	case "setactive":
		if err := setActiveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setActiveBoard == "" {
			setActiveCmd.Usage()
			return errHelp
		}
		return cli.setActive(*setActiveBoard, *setActiveVal)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordStudent == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordStudent, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) createBoard(title, ownerID string) error {
	b, err := cli.boardSvc.Create(context.Background(), board.NewBoard{Title: title, OwnerID: ownerID})
	if err != nil {
		return err
	}
	fmt.Printf("board created: %s\n", b.ID)
	return nil
}

func (cli *commandLine) setActive(boardID string, active bool) error {
	return cli.boardSvc.SetActive(context.Background(), boardID, active)
}
