package main

import "strconv"

func int32Flag(dst *int32) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return err
		}
		*dst = int32(v)
		return nil
	}
}
