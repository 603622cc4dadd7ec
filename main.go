/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/YassineKADER/Drawniness-Iot-Project/cmd"

func main() {
	cmd.Execute()
}
