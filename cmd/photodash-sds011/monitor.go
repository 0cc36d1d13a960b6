package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hjkoskel/sds011dash"
	"github.com/pkg/term"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive console, read sensor on keypress",
	Long: `Reads frames from the sensor on request and prints classification.
Nothing is sent to the dashboard.`,
	RunE: runMonitor,
}

// Same order as bands on scale
var bandColors = []color.Attribute{
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgYellow,
	color.FgHiRed,
	color.FgMagenta,
	color.FgRed,
}

func printInteractiveHelp() {
	fmt.Printf("---- Interactive commands ----\n")
	fmt.Printf("d = read one frame and classify\n")
	fmt.Printf("o = close sensor link\n")
	fmt.Printf("s = print link status\n")
	fmt.Printf("h = print this help\n")
	fmt.Printf("q = quit\n")
}

func getch() []byte {
	t, err := term.Open("/dev/tty")
	if err != nil {
		return nil
	}
	term.RawMode(t)
	bytes := make([]byte, 3)
	numRead, err := t.Read(bytes)
	t.Restore()
	t.Close()
	if err != nil {
		return nil
	}
	return bytes[0:numRead]
}

func bandAttribute(band sds011dash.Band, table *sds011dash.RangeTable) color.Attribute {
	for i, b := range table.Bands() {
		if b.Lower == band.Lower && i < len(bandColors) {
			return bandColors[i]
		}
	}
	return color.Reset
}

func readAndPrint(source sds011dash.ByteSource, classifier *sds011dash.Classifier) {
	if !source.IsOpen() {
		if errOpen := source.Open(); errOpen != nil {
			color.Red("Opening sensor link failed: %v", errOpen)
			return
		}
	}
	frame, skipped, errRead := sds011dash.ReadFrame(source)
	if 0 < skipped {
		color.Yellow("Skipped %v bytes of line noise", skipped)
	}
	if errRead != nil {
		color.Red("Read failed after %v bytes: %v", len(frame), errRead)
	}
	fmt.Printf("frame: % X\n", []byte(frame))

	var pack sds011dash.Packet
	if errPack := pack.FromBytes(frame); errPack != nil {
		color.Yellow("Frame is not valid packet: %v", errPack)
	} else if res, errRes := pack.GetMeasurement(); errRes == nil {
		fmt.Printf("sensor %X %v\n", pack.DeviceID, res.ToString())
	}

	for _, ch := range sds011dash.Channels {
		reading, errDecode := sds011dash.DecodeReading(frame, ch.FrameOffset())
		if errDecode != nil {
			color.Red("PM%v: %v", ch, errDecode)
			continue
		}
		band, table, errClassify := classifier.Classify(ch, reading)
		if errClassify != nil {
			color.Red("PM%v: %v", ch, errClassify)
			continue
		}
		fmt.Printf("PM%-4v %6.1f µg/m³  ", ch, reading)
		color.New(bandAttribute(band, table), color.Bold).Printf("%v\n", band.Label)
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := sds011dash.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger, logFile, err := sds011dash.NewLogger(cfg.Log, verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logFile.Close()

	source := openSource(cfg)
	if errOpen := source.Open(); errOpen != nil {
		return fmt.Errorf("sensor: %w", errOpen)
	}
	defer source.Close()
	classifier := sds011dash.NewClassifier(logger)

	printInteractiveHelp()
	for {
		arr := getch()
		if len(arr) == 0 {
			return fmt.Errorf("no terminal for interactive input")
		}
		switch string(arr[0]) {
		case "\x03", "q":
			return nil
		case "d":
			readAndPrint(source, classifier)
		case "o":
			if errClose := source.Close(); errClose != nil {
				color.Red("Closing failed: %v", errClose)
			} else {
				fmt.Printf("Sensor link closed, next read opens it again\n")
			}
		case "s":
			if source.IsOpen() {
				color.Green("Sensor link open")
			} else {
				color.Yellow("Sensor link closed")
			}
		case "h":
			printInteractiveHelp()
		}
	}
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
