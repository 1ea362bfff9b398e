// Package cli provides the Cobra-based storefront client.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"tienda/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tienda",
		Short: "Command-line storefront for the tienda backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// tests inject a pre-wired app
			if app != nil {
				return nil
			}

			if cfg := viper.GetString("config"); cfg != "" {
				viper.SetConfigFile(cfg)
				if err := viper.ReadInConfig(); err != nil {
					return err
				}
			}

			var err error
			app, err = newApp(Config{
				APIURL:    viper.GetString("api-url"),
				SessionDB: viper.GetString("session-db"),
				AMQPURL:   viper.GetString("amqp-url"),
			})
			return err
		},
	}

	app *App
)

func init() {
	rootCmd.PersistentFlags().String("api-url", "http://localhost:3000", "base URL of the backend API")
	rootCmd.PersistentFlags().String("session-db", defaultSessionPath(), "path of the local session database")
	rootCmd.PersistentFlags().String("amqp-url", "", "RabbitMQ URL for order events (optional)")
	rootCmd.PersistentFlags().String("config", "", "config file")

	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("session-db", rootCmd.PersistentFlags().Lookup("session-db"))
	viper.BindPFlag("amqp-url", rootCmd.PersistentFlags().Lookup("amqp-url"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.SetEnvPrefix("TIENDA")
	viper.AutomaticEnv()

	// register
	var regUser, regEmail, regPassword string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Auth.Register(context.Background(), models.User{
				Username: regUser,
				Email:    regEmail,
				Password: regPassword,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Account %q created. You can now log in.\n", user.Username)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&regUser, "username", "", "username")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "email address")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "password")
	rootCmd.AddCommand(registerCmd)

	// login
	var loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the session locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := loginPassword
			if password == "" {
				fmt.Print("Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}
			user, err := app.Auth.Login(context.Background(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s.\n", user.Username)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)

	// logout
	rootCmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	})

	// whoami
	rootCmd.AddCommand(&cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := app.Auth.Current()
			if user == nil {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s <%s>\n", user.Username, user.Email)
			return nil
		},
	})
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if app != nil {
		app.Close()
	}
	return err
}

func confirm(prompt string) bool {
	fmt.Printf("%s (y/N): ", prompt)
	var resp string
	if _, err := fmt.Scanln(&resp); err != nil {
		return false
	}
	return resp == "y" || resp == "Y"
}
