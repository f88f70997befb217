package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var welcomeLines = [...]string{
	"The rooms are open. Your seat is empty.",
	"Somebody just asked the question you know the answer to.",
	"Three study groups started in the last hour. Zero of them have you.",
	"Your course mates are on the board right now, arguing about problem 4.",
	"Exam season does not wait for anyone. Neither does the good room.",
	"A profile with no photo is still a profile. Come set one anyway.",
	"The whiteboard is full. The chairs are not.",
	"Office hours end. Study rooms don't.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("S T U D Y H A L L")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"studyhall", "Open the study rooms (interactive TUI)"},
		{"studyhall login", "Sign in through the browser"},
		{"studyhall logout", "Clear your session"},
		{"studyhall web", "Open the web app"},
		{"studyhall --version", "Show version"},
		{"studyhall help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  Commands:\n", title)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	url := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("https://studyhall.app")
	fmt.Printf("\n  %s\n\n", url)
}

func printWelcome() {
	msg := welcomeLines[rand.IntN(len(welcomeLines))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("STUDYHALL")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To get in: studyhall login")

	fmt.Printf("\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
