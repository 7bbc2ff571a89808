package util

import (
	"os/exec"
	"runtime"
)

// browserCommand OS ごとの既定ブラウザ起動コマンド
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		// Windows 7 でも動く rundll32 を使う
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// fallbackCommands 既定の方法が失敗したときに順に試すコマンド
func fallbackCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		return [][]string{{"explorer", url}}
	case "linux":
		browsers := []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}
		cmds := make([][]string, 0, len(browsers))
		for _, b := range browsers {
			cmds = append(cmds, []string{b, url})
		}
		return cmds
	}
	return nil
}

// OpenBrowser 既定のブラウザで URL を開く
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}

// OpenBrowserWithFallback 失敗したら別の方法を試す
func OpenBrowserWithFallback(url string) error {
	err := OpenBrowser(url)
	if err == nil {
		return nil
	}

	for _, cmd := range fallbackCommands(runtime.GOOS, url) {
		if e := exec.Command(cmd[0], cmd[1:]...).Start(); e == nil {
			return nil
		}
	}
	return err
}
