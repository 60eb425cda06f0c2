package compositor

// KeybindHint returns a copy-pasteable keybinding snippet for the detected
// compositor's config format, wiring wallpaper cycling to Super+W keys.
func KeybindHint(k Kind) string {
	switch k {
	case Hyprland:
		return `# ~/.config/hypr/hyprland.conf
bind = SUPER, W, exec, wallkit next
bind = SUPER SHIFT, W, exec, wallkit prev
bind = SUPER CTRL, W, exec, wallkit random`
	case Niri:
		return `// ~/.config/niri/config.kdl (binds section)
Mod+W { spawn "wallkit" "next"; }
Mod+Shift+W { spawn "wallkit" "prev"; }
Mod+Ctrl+W { spawn "wallkit" "random"; }`
	case Sway:
		return `# ~/.config/sway/config
bindsym $mod+w exec wallkit next
bindsym $mod+Shift+w exec wallkit prev
bindsym $mod+Ctrl+w exec wallkit random`
	case Labwc:
		return `<!-- ~/.config/labwc/rc.xml (inside <keyboard>) -->
<keybind key="W-w"><action name="Execute" command="wallkit next"/></keybind>
<keybind key="W-S-w"><action name="Execute" command="wallkit prev"/></keybind>
<keybind key="W-C-w"><action name="Execute" command="wallkit random"/></keybind>`
	case KDE:
		return `KDE: System Settings > Shortcuts > Custom Shortcuts, add commands
"wallkit next", "wallkit prev" and "wallkit random" with your preferred keys.`
	default:
		return "No keybind template for this compositor; bind the wallkit subcommands manually."
	}
}
