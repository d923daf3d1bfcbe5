package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/yourusername/redweb-api/pkg/client"
)

// Интерактивный вход, регистрация и сброс пароля через API
func main() {
	apiURL := flag.String("api", "http://localhost:3000", "адрес API")
	sessionPath := flag.String("session", ".authflow-session.json", "файл сессии")
	flag.Parse()

	api := client.New(*apiURL, nil)
	store := client.NewSessionStore(*sessionPath)
	guard := client.NewGuard(store, api)

	ctx := context.Background()
	if session, err := guard.Require(ctx); err == nil {
		fmt.Printf("Вы вошли как %s (%s), сессия до %s\n",
			session.User.Username, session.User.Email, session.ExpiresAt.Local().Format(time.RFC822))
		return
	}

	p := &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	if err := runFlow(ctx, client.NewFlowController(api, store), p); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(os.Stderr, "ошибка: %v\n", err)
		os.Exit(1)
	}
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runFlow(ctx context.Context, flow *client.FlowController, p *prompter) error {
	for {
		session, err := step(ctx, flow, p)
		if errors.Is(err, io.EOF) {
			return err
		}
		if err != nil {
			report(p.out, err)
			continue
		}
		if session != nil {
			fmt.Fprintf(p.out, "Добро пожаловать, %s!\n", session.User.Username)
			return nil
		}
	}
}

// step выполняет одно действие текущего режима
func step(ctx context.Context, flow *client.FlowController, p *prompter) (*client.Session, error) {
	switch flow.Mode() {
	case client.ModeLogin:
		email, err := p.ask("Email (или 'r' регистрация, 'f' забыли пароль)")
		if err != nil {
			return nil, err
		}
		switch email {
		case "r":
			return nil, flow.SwitchTo(client.ModeRegister)
		case "f":
			return nil, flow.SwitchTo(client.ModeForgotPassword)
		}
		password, err := p.ask("Пароль")
		if err != nil {
			return nil, err
		}
		return flow.Login(ctx, email, password)

	case client.ModeRegister, client.ModeForgotPassword:
		email, err := p.ask("Email для кода (или 'l' ко входу)")
		if err != nil {
			return nil, err
		}
		if email == "l" {
			return nil, flow.SwitchTo(client.ModeLogin)
		}
		if err := flow.SendCode(ctx, email); err != nil {
			return nil, err
		}
		fmt.Fprintln(p.out, "Код отправлен на почту")
		return nil, nil

	case client.ModeCode, client.ModeResetPassword:
		code, err := p.ask(fmt.Sprintf("Код из письма для %s (или 'resend')", flow.Email()))
		if err != nil {
			return nil, err
		}
		if code == "resend" {
			if err := flow.SendCode(ctx, ""); err != nil {
				return nil, err
			}
			fmt.Fprintln(p.out, "Код отправлен повторно")
			return nil, nil
		}
		if err := flow.VerifyCode(ctx, code); err != nil {
			return nil, err
		}
		fmt.Fprintln(p.out, "Код подтвержден")
		return nil, nil

	case client.ModePassword:
		username, err := p.ask("Имя пользователя")
		if err != nil {
			return nil, err
		}
		password, err := p.ask("Пароль (минимум 6 символов)")
		if err != nil {
			return nil, err
		}
		return flow.Register(ctx, username, password)

	case client.ModeNewPassword:
		password, err := p.ask("Новый пароль")
		if err != nil {
			return nil, err
		}
		if err := flow.UpdatePassword(ctx, password); err != nil {
			return nil, err
		}
		fmt.Fprintln(p.out, "Пароль обновлен, войдите с новым паролем")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown mode %q", flow.Mode())
}

func report(out io.Writer, err error) {
	var fieldErr *client.FieldError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &fieldErr):
		fmt.Fprintln(out, fieldErr.Message)
	case errors.As(err, &apiErr):
		fmt.Fprintln(out, apiErr.Message)
	case errors.Is(err, client.ErrResendCooldown):
		fmt.Fprintf(out, "Повторная отправка пока недоступна: %v\n", err)
	default:
		fmt.Fprintf(out, "Ошибка: %v\n", err)
	}
}
