package kv

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	postCmd = &cobra.Command{
		Use:   "post [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvClient.Post(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("post successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if value, ok, err := kvClient.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, value=%s\n", key, ok, value)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "delete [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if deleted, err := kvClient.Delete(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, deleted=%t\n", key, deleted)
			}
			return nil
		},
	}
	rawCmd = &cobra.Command{
		Use:   "raw [tokens...]",
		Short: "Sends the arguments as one protocol line and prints the raw response",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := kvClient.Do(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return nil
		},
	}
)
