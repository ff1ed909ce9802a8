package cli

import (
	"fmt"
	"io"
)

// BashCompletion generates bash completion script
const BashCompletion = `#!/bin/bash
# Bash completion for chromelogger-inspect

_chromelogger_inspect_completion() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    local commands="fetch decode completion"
    local global_flags="-no-color -no-locations -json"
    local fetch_flags="-X -H -timeout -retries"

    case "${prev}" in
        -X)
            COMPREPLY=( $(compgen -W "GET POST PUT PATCH DELETE HEAD OPTIONS" -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            return 0
            ;;
        fetch)
            COMPREPLY=( $(compgen -W "${fetch_flags}" -- ${cur}) )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "${commands} ${global_flags}" -- ${cur}) )
    return 0
}

complete -F _chromelogger_inspect_completion chromelogger-inspect
`

// ZshCompletion generates zsh completion script
const ZshCompletion = `#compdef chromelogger-inspect

_chromelogger_inspect() {
    local -a commands
    commands=(
        'fetch:Request a URL and print its console log'
        'decode:Decode an X-ChromeLogger-Data value'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '-no-color[Disable colored output]' \
        '-no-locations[Hide the backtrace column]' \
        '-json[Print the decoded JSON document]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                fetch)
                    _arguments \
                        '-X[HTTP method]:method:(GET POST PUT PATCH DELETE HEAD OPTIONS)' \
                        '*-H[Request header]:header:' \
                        '-timeout[Request timeout]:duration:' \
                        '-retries[Retries on 502/503/504]:count:' \
                        '1:url:_urls'
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_chromelogger_inspect "$@"
`

// FishCompletion generates fish completion script
const FishCompletion = `# Fish completion for chromelogger-inspect

complete -c chromelogger-inspect -f -n "__fish_use_subcommand" -a "fetch" -d "Request a URL and print its console log"
complete -c chromelogger-inspect -f -n "__fish_use_subcommand" -a "decode" -d "Decode an X-ChromeLogger-Data value"
complete -c chromelogger-inspect -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion"

complete -c chromelogger-inspect -f -n "__fish_seen_subcommand_from fetch" -o X -x -a "GET POST PUT PATCH DELETE HEAD OPTIONS" -d "HTTP method"
complete -c chromelogger-inspect -f -n "__fish_seen_subcommand_from fetch" -o H -x -d "Request header"
complete -c chromelogger-inspect -f -n "__fish_seen_subcommand_from fetch" -o timeout -x -d "Request timeout"
complete -c chromelogger-inspect -f -n "__fish_seen_subcommand_from fetch" -o retries -x -d "Retries on 502/503/504"

complete -c chromelogger-inspect -f -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"

complete -c chromelogger-inspect -o no-color -d "Disable colored output"
complete -c chromelogger-inspect -o no-locations -d "Hide the backtrace column"
complete -c chromelogger-inspect -o json -d "Print the decoded JSON document"
`

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell string) error {
	var script string

	switch shell {
	case "bash":
		script = BashCompletion
	case "zsh":
		script = ZshCompletion
	case "fish":
		script = FishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}

	_, err := io.WriteString(w, script)
	return err
}
