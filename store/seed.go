package store

import "cmdbank/model"

// Defaults returns the starter templates offered by "cmdbank seed".
func Defaults() model.Catalog {
	return model.Catalog{
		model.GAM: {
			{Command: "gam group <group> members", Description: "List members of a group"},
			{Command: "gam user <user> suspended on", Description: "Suspend a user"},
			{Command: "gam user <user> unsuspended", Description: "Unsuspend a user"},
			{Command: "gam user <user> change password newpassword <newpassword>", Description: "Change a user's password"},
			{Command: "gam create group <group>", Description: "Create a new group"},
			{Command: "gam delete group <group>", Description: "Delete a group"},
			{Command: "gam user <user> add group <group>", Description: "Add a user to a group"},
			{Command: "gam user <user> remove group <group>", Description: "Remove a user from a group"},
			{Command: "gam info domain", Description: "Show domain information"},
			{Command: "gam info user <Email Address>", Description: "Show User Info"},
		},
		model.AD: {
			{Command: "Get-ADUser -Identity <user>", Description: "Get a specific user"},
			{Command: "Get-ADGroup -Identity <group>", Description: "Get a specific group"},
			{Command: "Disable-ADAccount -Identity <user>", Description: "Disable a user account"},
			{Command: "Enable-ADAccount -Identity <user>", Description: "Enable a user account"},
			{Command: "Set-ADUser -Identity <user> -Password <securepassword>", Description: "Set a user's password (use SecureString)"},
			{Command: "New-ADGroup -Name <group> -GroupCategory Security -GroupScope Global", Description: "Create a new security group"},
			{Command: "Remove-ADGroup -Identity <group>", Description: "Delete a group"},
			{Command: "Add-ADGroupMember -Identity <group> -Members <user>", Description: "Add a user to a group"},
			{Command: "Remove-ADGroupMember -Identity <group> -Members <user>", Description: "Remove a user from a group"},
			{Command: "Get-ADDomain", Description: "Get domain information"},
		},
		model.PowerShell: {
			{Command: "Get-Process", Description: "List all running processes"},
			{Command: "Stop-Process -Id <process_id>", Description: "Stop a process by its ID"},
			{Command: "Get-Service", Description: "List all services"},
			{Command: "Start-Service -Name <service_name>", Description: "Start a service"},
			{Command: "Stop-Service -Name <service_name>", Description: "Stop a service"},
			{Command: "Get-Item <path>", Description: "Get a file or folder"},
			{Command: "Set-Content -Path <path> -Value <content>", Description: "Set the content of a file"},
			{Command: "New-Item -Path <path> -ItemType File", Description: "Create a new file"},
			{Command: "New-Item -Path <path> -ItemType Directory", Description: "Create a new folder"},
			{Command: "Remove-Item -Path <path>", Description: "Delete a file or folder"},
			{Command: "Get-ChildItem -Path <path>", Description: "Get the files and folders in a path"},
			{Command: "Get-EventLog -LogName System -EntryType Error", Description: "Get system error events"},
			{Command: "Restart-Computer", Description: "Restart the computer"},
			{Command: "Get-Credential", Description: "Get a user's credentials"},
			{Command: "$PSVersionTable.PSVersion", Description: "Show the current PowerShell version"},
		},
	}
}
