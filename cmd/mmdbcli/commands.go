package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/maxpoulin64/mmdb-go"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <db> <ip>",
		Short: "Look up an address and print its record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := maxminddb.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			res := db.Lookup(args[1])
			if res.Err() != nil {
				return res.Err()
			}
			if !res.Found() {
				fmt.Println("null")
				os.Exit(1)
			}

			val, err := res.Value()
			if err != nil {
				return err
			}
			enc, err := json.Marshal(val)
			if err != nil {
				return err
			}
			fmt.Println(string(enc))
			return nil
		},
	}
}

func newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <db>",
		Short: "Print the database's Metadata record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := maxminddb.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			enc, err := json.MarshalIndent(db.Metadata, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(enc))
			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <db>",
		Short: "Check the database's structural invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := maxminddb.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Verify(); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <db>",
		Short: "Print one JSON line per network the database assigns a record to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := maxminddb.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			enc := json.NewEncoder(os.Stdout)
			for res := range db.Networks() {
				if res.Err() != nil {
					return res.Err()
				}
				val, err := res.Value()
				if err != nil {
					return err
				}
				line := struct {
					Network string         `json:"network"`
					Record  json.Marshaler `json:"record"`
				}{
					Network: res.Prefix().String(),
					Record:  val,
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
